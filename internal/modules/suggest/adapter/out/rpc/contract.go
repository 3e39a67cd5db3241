// Package rpc is the wire contract between ascend and a generator plugin.
// Messages travel as JSON over go-plugin's gRPC transport, so no generated
// protobuf code is needed.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey      = "generator"
	serviceName       = "ascend.generator.v1.Generator"
	jsonCodecName     = "json"
	methodGetMetadata = "/" + serviceName + "/GetMetadata"
	methodSuggest     = "/" + serviceName + "/Suggest"
	methodQuiz        = "/" + serviceName + "/Quiz"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "ASCEND_GENERATOR",
	MagicCookieValue: "ascend",
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
	Name    string `json:"name"`
	Version string `json:"version"`
}

type SuggestRequest struct {
	Categories []string `json:"categories"`
	Existing   []string `json:"existing"`
	Count      int32    `json:"count"`
}

type Candidate struct {
	Title     string `json:"title"`
	Category  string `json:"category"`
	Priority  string `json:"priority"`
	Rationale string `json:"rationale"`
}

type SuggestResponse struct {
	Candidates []Candidate `json:"candidates"`
}

type QuizRequest struct {
	Concept string `json:"concept"`
}

type QuizResponse struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int32    `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

type GeneratorServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	Suggest(ctx context.Context, in *SuggestRequest) (*SuggestResponse, error)
	Quiz(ctx context.Context, in *QuizRequest) (*QuizResponse, error)
}

type GeneratorClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	Suggest(ctx context.Context, in *SuggestRequest) (*SuggestResponse, error)
	Quiz(ctx context.Context, in *QuizRequest) (*QuizResponse, error)
}

type generatorClient struct {
	conn *grpc.ClientConn
}

func NewGeneratorClient(conn *grpc.ClientConn) GeneratorClient {
	return &generatorClient{conn: conn}
}

func (c *generatorClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *generatorClient) Suggest(ctx context.Context, in *SuggestRequest) (*SuggestResponse, error) {
	out := &SuggestResponse{}
	if err := c.conn.Invoke(ctx, methodSuggest, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *generatorClient) Quiz(ctx context.Context, in *QuizRequest) (*QuizResponse, error) {
	out := &QuizResponse{}
	if err := c.conn.Invoke(ctx, methodQuiz, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

// unary builds a method handler for a request type Req.
func unary[Req any, Resp any](method string, call func(context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	name := method[len(serviceName)+2:]
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
			handler := func(ctx context.Context, req any) (any, error) {
				typed, ok := req.(*Req)
				if !ok {
					return nil, fmt.Errorf("invalid request type %T", req)
				}
				return call(ctx, typed)
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func RegisterGeneratorServer(server grpc.ServiceRegistrar, impl GeneratorServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*GeneratorServer)(nil),
		Methods: []grpc.MethodDesc{
			unary(methodGetMetadata, impl.GetMetadata),
			unary(methodSuggest, impl.Suggest),
			unary(methodQuiz, impl.Quiz),
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "generator-rpc-v1",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl GeneratorServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterGeneratorServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewGeneratorClient(conn), nil
}

func PluginMap(impl GeneratorServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
