package clock

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/hudcostreets/ht-sub001/utils/sidecar"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName 时钟服务全名
const ServiceName = "ht.v1.ClockService"

// Register 将时钟服务注册到sidecar
func (c *Clock) Register(s *sidecar.Sidecar) {
	s.Register(
		ServiceName,
		func(opts ...connect.HandlerOption) (pattern string, handler http.Handler) {
			return sidecar.NewServiceHandler(ServiceName, map[string]sidecar.UnaryFunc{
				"Now": c.Now,
			}, opts...)
		},
	)
}

// Now 获取当前仿真时间
// 返回：{minute: 绝对分钟, display: "MM:SS", step, speed}
func (c *Clock) Now(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"minute":  c.T(),
		"display": c.String(),
		"step":    float64(c.Step()),
		"speed":   c.speed,
	})
}
