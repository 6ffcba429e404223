// 配置加载：YAML文件或base64数据，隧道定义可选从MongoDB读取
package input

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/hudcostreets/ht-sub001/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v2"
)

// connectTimeout MongoDB连接与查询的超时
const connectTimeout = 10 * time.Second

// Read 读取原始配置内容
// 功能：path与data二选一，data为base64编码的YAML
// 返回：YAML字节；都为空、同时设置或解码失败时返回ErrInvalidConfig
func Read(path, data string) ([]byte, error) {
	switch {
	case path != "" && data != "":
		return nil, fmt.Errorf("%w: config file and config data are mutually exclusive", config.ErrInvalidConfig)
	case path != "":
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
		}
		return file, nil
	case data != "":
		file, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("%w: config data: %v", config.ErrInvalidConfig, err)
		}
		return file, nil
	default:
		return nil, fmt.Errorf("%w: config file or config data must be specified", config.ErrInvalidConfig)
	}
}

// Parse 解析YAML配置
// 说明：未知字段视为错误（UnmarshalStrict）
func Parse(file []byte) (config.Config, error) {
	var c config.Config
	if err := yaml.UnmarshalStrict(file, &c); err != nil {
		return c, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	return c, nil
}

// Load 加载并校验完整配置
// 功能：读取 -> 解析 -> （设置了input.uri时）从MongoDB替换tunnels -> 校验
// 参数：ctx-MongoDB访问的上下文，path-配置文件路径，data-base64编码的配置
func Load(ctx context.Context, path, data string) (config.Config, error) {
	file, err := Read(path, data)
	if err != nil {
		return config.Config{}, err
	}
	c, err := Parse(file)
	if err != nil {
		return c, err
	}
	if c.Input != nil && c.Input.URI != "" {
		if c.Tunnels, err = LoadTunnels(ctx, *c.Input); err != nil {
			return c, err
		}
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// LoadTunnels 从MongoDB集合读取隧道定义
// 功能：每个文档为一个config.Tunnel（bson字段名与YAML一致），按name排序
// 参数：ctx-上下文，in-连接配置
// 返回：隧道列表；连接、查询、解码失败或集合为空时返回错误
func LoadTunnels(ctx context.Context, in config.Input) ([]config.Tunnel, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(in.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warnf("failed to disconnect from mongodb: %v", err)
		}
	}()

	log.Infof("start fetching tunnels from %s.%s", in.DB, in.Col)
	coll := client.Database(in.DB).Collection(in.Col)
	cursor, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find tunnels in %s.%s: %w", in.DB, in.Col, err)
	}
	var tunnels []config.Tunnel
	if err := cursor.All(ctx, &tunnels); err != nil {
		return nil, fmt.Errorf("decode tunnels from %s.%s: %w", in.DB, in.Col, err)
	}
	if len(tunnels) == 0 {
		return nil, fmt.Errorf("%w: no tunnels in %s.%s", config.ErrInvalidConfig, in.DB, in.Col)
	}
	log.Infof("finish fetching %d tunnels from %s.%s", len(tunnels), in.DB, in.Col)
	return tunnels, nil
}
