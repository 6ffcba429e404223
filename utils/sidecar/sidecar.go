// RPC挂载点：收集各模块的connect服务并统一暴露为一个http.Handler
package sidecar

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"connectrpc.com/connect"
	"github.com/rs/cors"
	"github.com/samber/lo"
	"google.golang.org/protobuf/types/known/structpb"
)

// Sidecar 服务注册表
// 功能：各实体管理器通过Register把自己的服务挂到同一个ServeMux上
type Sidecar struct {
	mux      *http.ServeMux
	opts     []connect.HandlerOption
	services []string
}

// New 创建服务注册表
// 参数：opts-对所有服务生效的connect选项（拦截器、压缩等）
func New(opts ...connect.HandlerOption) *Sidecar {
	return &Sidecar{mux: http.NewServeMux(), opts: opts}
}

// Register 注册一个connect服务
// 参数：name-服务全名，fn-根据选项构造服务的路由前缀与处理器
func (s *Sidecar) Register(name string, fn func(opts ...connect.HandlerOption) (pattern string, handler http.Handler)) {
	pattern, handler := fn(s.opts...)
	s.mux.Handle(pattern, handler)
	s.services = append(s.services, name)
	log.Debugf("register service %s at %s", name, pattern)
}

// Handle 注册非RPC的http处理器（例如websocket推流）
func (s *Sidecar) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
}

// Services 已注册的服务名（按字典序）
func (s *Sidecar) Services() []string {
	res := append([]string(nil), s.services...)
	sort.Strings(res)
	return res
}

// Handler 统一的http处理器
// 说明：外层包一层CORS，浏览器前端可以跨域直接用connect协议调用，也可以跨域订阅推流
func (s *Sidecar) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Grpc-Status", "Grpc-Message"},
		MaxAge:         7200,
	}).Handler(s.mux)
}

// UnaryFunc 以structpb.Struct为消息的一元RPC方法
type UnaryFunc func(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

// NewServiceHandler 由方法表构造connect服务
// 功能：每个方法挂在/{service}/{method}，消息统一为google.protobuf.Struct
// 返回：路由前缀/{service}/与处理器，可直接作为Register的返回值
func NewServiceHandler(service string, methods map[string]UnaryFunc, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	for _, name := range lo.Keys(methods) {
		fn := methods[name]
		procedure := Procedure(service, name)
		mux.Handle(procedure, connect.NewUnaryHandler(
			procedure,
			func(ctx context.Context, in *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
				out, err := fn(ctx, in.Msg)
				if err != nil {
					return nil, err
				}
				return connect.NewResponse(out), nil
			},
			opts...,
		))
	}
	return "/" + service + "/", mux
}

// Procedure 方法的完整路径/{service}/{method}
func Procedure(service, method string) string {
	return "/" + strings.Trim(service, "/") + "/" + method
}

// Call 以structpb.Struct调用一元方法，供客户端与测试使用
func Call(ctx context.Context, client connect.HTTPClient, baseURL, service, method string, req map[string]any) (*structpb.Struct, error) {
	msg, err := structpb.NewStruct(req)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	c := connect.NewClient[structpb.Struct, structpb.Struct](client, strings.TrimRight(baseURL, "/")+Procedure(service, method))
	res, err := c.CallUnary(ctx, connect.NewRequest(msg))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}
