package main

import (
	"context"

	generatorout "dojo/internal/modules/generator/adapter/out"
	generatorrpc "dojo/internal/modules/generator/adapter/out/rpc"
	"dojo/internal/modules/generator/domain"

	"github.com/hashicorp/go-plugin"
)

type server struct {
	bank generatorout.OfflineGenerator
}

func (s *server) GetMetadata(_ context.Context, _ *generatorrpc.Empty) (*generatorrpc.Metadata, error) {
	return &generatorrpc.Metadata{
		Name:         "sensei",
		Version:      "1.0.0",
		Capabilities: []string{string(domain.CapabilityGenerate), string(domain.CapabilityDiagnose)},
	}, nil
}

func (s *server) Generate(ctx context.Context, in *generatorrpc.GenerateRequest) (*generatorrpc.GenerateResponse, error) {
	exercise, err := s.bank.Generate(ctx, domain.Request{Pillar: in.Pillar, Difficulty: in.Difficulty})
	if err != nil {
		return nil, err
	}
	return &generatorrpc.GenerateResponse{Title: exercise.Title, Mission: exercise.Mission, TemplateKind: exercise.TemplateKind}, nil
}

func (s *server) Diagnose(ctx context.Context, in *generatorrpc.DiagnoseRequest) (*generatorrpc.DiagnoseResponse, error) {
	failures := make([]domain.FailureLine, 0, len(in.Failures))
	for _, f := range in.Failures {
		failures = append(failures, domain.FailureLine{Name: f.Name, Message: f.Message})
	}
	hint, err := s.bank.Diagnose(ctx, domain.FailureDetail{KataSlug: in.KataSlug, Failures: failures, Output: in.Output})
	if err != nil {
		return nil, err
	}
	return &generatorrpc.DiagnoseResponse{Hint: hint}, nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: generatorrpc.HandshakeConfig,
		Plugins:         generatorrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
