package rpc

import (
	"context"
	"encoding/json"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey      = "sensei"
	serviceName       = "dojo.generator.v1.Sensei"
	jsonCodecName     = "json"
	methodGetMetadata = "/" + serviceName + "/GetMetadata"
	methodGenerate    = "/" + serviceName + "/Generate"
	methodDiagnose    = "/" + serviceName + "/Diagnose"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "DOJO_GENERATOR_PLUGIN",
	MagicCookieValue: "dojo",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

type GenerateRequest struct {
	Pillar     string `json:"pillar"`
	Difficulty string `json:"difficulty"`
}

type GenerateResponse struct {
	Title        string `json:"title"`
	Mission      string `json:"mission"`
	TemplateKind string `json:"template_kind"`
}

type Failure struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type DiagnoseRequest struct {
	KataSlug string    `json:"kata_slug"`
	Failures []Failure `json:"failures"`
	Output   string    `json:"output"`
}

type DiagnoseResponse struct {
	Hint string `json:"hint"`
}

type SenseiServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	Generate(ctx context.Context, in *GenerateRequest) (*GenerateResponse, error)
	Diagnose(ctx context.Context, in *DiagnoseRequest) (*DiagnoseResponse, error)
}

type SenseiClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	Generate(ctx context.Context, in *GenerateRequest) (*GenerateResponse, error)
	Diagnose(ctx context.Context, in *DiagnoseRequest) (*DiagnoseResponse, error)
}

type senseiClient struct {
	conn *grpc.ClientConn
}

func NewSenseiClient(conn *grpc.ClientConn) SenseiClient {
	return &senseiClient{conn: conn}
}

func (c *senseiClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *senseiClient) Generate(ctx context.Context, in *GenerateRequest) (*GenerateResponse, error) {
	out := &GenerateResponse{}
	if err := c.conn.Invoke(ctx, methodGenerate, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *senseiClient) Diagnose(ctx context.Context, in *DiagnoseRequest) (*DiagnoseResponse, error) {
	out := &DiagnoseResponse{}
	if err := c.conn.Invoke(ctx, methodDiagnose, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

// unary adapts a typed server method to a grpc handler.
func unary[Req any, Resp any](fullMethod string, call func(context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(ctx, req.(*Req))
		})
	}
}

func RegisterSenseiServer(server grpc.ServiceRegistrar, impl SenseiServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*SenseiServer)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "GetMetadata", Handler: unary(methodGetMetadata, impl.GetMetadata)},
			{MethodName: "Generate", Handler: unary(methodGenerate, impl.Generate)},
			{MethodName: "Diagnose", Handler: unary(methodDiagnose, impl.Diagnose)},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/generator-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl SenseiServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterSenseiServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewSenseiClient(conn), nil
}

func PluginMap(impl SenseiServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
