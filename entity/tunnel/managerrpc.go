package tunnel

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"

	"connectrpc.com/connect"
	"github.com/hudcostreets/ht-sub001/entity/vehicle"
	"github.com/hudcostreets/ht-sub001/utils/sidecar"
	"github.com/samber/lo"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName 隧道服务全名
const ServiceName = "ht.v1.TunnelService"

// Register 将隧道管理器注册到sidecar
// 功能：以google.protobuf.Struct为消息注册Position、Phase、Vehicles、Frame、QueueLength五个一元方法
func (m *Manager) Register(s *sidecar.Sidecar) {
	s.Register(
		ServiceName,
		func(opts ...connect.HandlerOption) (pattern string, handler http.Handler) {
			return sidecar.NewServiceHandler(ServiceName, map[string]sidecar.UnaryFunc{
				"Position":    m.rpcPosition,
				"Phase":       m.rpcPhase,
				"Vehicles":    m.rpcVehicles,
				"Frame":       m.rpcFrame,
				"QueueLength": m.rpcQueueLength,
			}, opts...)
		},
	)
}

// rpcPosition RPC接口：查询车辆位置
// 请求：{id: "E/R/3", minute: 绝对分钟}
// 返回：{id, kind, x, y, opacity, state, epoch}
func (m *Manager) rpcPosition(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	raw, err := stringField(in, "id")
	if err != nil {
		return nil, err
	}
	id, err := vehicle.ParseID(raw)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	abs, err := numberField(in, "minute")
	if err != nil {
		return nil, err
	}
	t, err := m.GetOrError(id.Tunnel)
	if err != nil {
		return nil, lookupError(err)
	}
	v, err := t.Vehicle(id)
	if err != nil {
		return nil, lookupError(err)
	}
	fields := positionFields(Position{ID: id.String(), Kind: v.Kind(), State: v.At(t.RelativeMinute(abs))})
	fields["epoch"] = t.Epoch().String()
	return structpb.NewStruct(fields)
}

// rpcPhase RPC接口：查询隧道相位
// 请求：{tunnel, minute: 绝对分钟}
// 返回：{tunnel, relative, phase}
func (m *Manager) rpcPhase(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	t, abs, err := m.tunnelAndMinute(in)
	if err != nil {
		return nil, err
	}
	rel := t.RelativeMinute(abs)
	return structpb.NewStruct(map[string]any{
		"tunnel":   t.Name(),
		"relative": rel,
		"phase":    t.PhaseAt(rel).String(),
	})
}

// rpcVehicles RPC接口：列出车辆标识
// 请求：{tunnel?}，缺省时列出全部隧道
// 返回：{ids: [...]}
func (m *Manager) rpcVehicles(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ids := m.AllVehicles()
	if _, ok := in.GetFields()["tunnel"]; ok {
		name, err := stringField(in, "tunnel")
		if err != nil {
			return nil, err
		}
		t, err := m.GetOrError(name)
		if err != nil {
			return nil, lookupError(err)
		}
		ids = t.Vehicles()
	}
	return structpb.NewStruct(map[string]any{
		"ids": lo.Map(ids, func(id vehicle.ID, _ int) any { return id.String() }),
	})
}

// rpcFrame RPC接口：整帧快照
// 请求：{minute: 绝对分钟}
// 返回：{minute, vehicles: [{id, kind, x, y, opacity, state}]}
func (m *Manager) rpcFrame(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	abs, err := numberField(in, "minute")
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]any{
		"minute": abs,
		"vehicles": lo.Map(m.Frame(abs), func(p Position, _ int) any {
			return positionFields(p)
		}),
	})
}

// rpcQueueLength RPC接口：自行车等候区队列长度
// 请求：{tunnel, minute: 绝对分钟}
// 返回：{tunnel, bikes}
func (m *Manager) rpcQueueLength(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	t, abs, err := m.tunnelAndMinute(in)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]any{
		"tunnel": t.Name(),
		"bikes":  t.BikeQueueLength(t.RelativeMinute(abs)),
	})
}

func (m *Manager) tunnelAndMinute(in *structpb.Struct) (*Tunnel, float64, error) {
	name, err := stringField(in, "tunnel")
	if err != nil {
		return nil, 0, err
	}
	abs, err := numberField(in, "minute")
	if err != nil {
		return nil, 0, err
	}
	t, err := m.GetOrError(name)
	if err != nil {
		return nil, 0, lookupError(err)
	}
	return t, abs, nil
}

func positionFields(p Position) map[string]any {
	return map[string]any{
		"id":      p.ID,
		"kind":    p.Kind,
		"x":       p.X,
		"y":       p.Y,
		"opacity": p.Opacity,
		"state":   p.Lifecycle.String(),
	}
}

func stringField(in *structpb.Struct, key string) (string, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		return "", connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("missing field %q", key))
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("field %q must be a string", key))
	}
	return s.StringValue, nil
}

func numberField(in *structpb.Struct, key string) (float64, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		return 0, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("missing field %q", key))
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("field %q must be a number", key))
	}
	if math.IsNaN(n.NumberValue) || math.IsInf(n.NumberValue, 0) {
		return 0, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("field %q must be finite, got %v", key, n.NumberValue))
	}
	return n.NumberValue, nil
}

func lookupError(err error) error {
	if errors.Is(err, ErrUnknownTunnel) || errors.Is(err, ErrUnknownVehicle) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}
