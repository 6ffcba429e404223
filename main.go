package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/hudcostreets/ht-sub001/task"
	"github.com/hudcostreets/ht-sub001/utils/config"
	"github.com/hudcostreets/ht-sub001/utils/input"
	"github.com/hudcostreets/ht-sub001/utils/sidecar"
	"github.com/sirupsen/logrus"
	easy "github.com/t-tomalak/logrus-easy-formatter"
)

var (
	// 本程序监听的地址（connect RPC与/stream共用）
	listen = flag.String("listen", ":51102", "RPC and stream listening address")
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")
	// 每秒真实时间推进的模拟分钟数
	speed = flag.Float64("speed", 1, "simulated minutes per wall-clock second")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", task.SelfName)
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 获取配置
	c, err := input.Load(ctx, *configPath, *configData)
	if err != nil {
		log.Panicf("config load err: %v", err)
	}
	log.Infof("%+v", c)

	t, err := task.NewContext(config.NewRuntimeConfig(c, *speed), sidecar.New())
	if err != nil {
		log.Panicf("build tunnels err: %v", err)
	}
	if err := t.Run(ctx, *listen); err != nil {
		log.Panicf("serve err: %v", err)
	}
}
