package out

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	generatorrpc "dojo/internal/modules/generator/adapter/out/rpc"
	"dojo/internal/modules/generator/domain"
	generatorout "dojo/internal/modules/generator/port/out"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 5 * time.Second
)

type GRPCHost struct{}

func NewGRPCHost() generatorout.Host {
	return &GRPCHost{}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	_, err := h.GetMetadata(ctx, manifest)
	return err
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer closeFn()

	callCtx, cancel := callContext(ctx)
	defer cancel()
	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	capabilities := make([]domain.Capability, 0, len(meta.Capabilities))
	for _, capability := range meta.Capabilities {
		capabilities = append(capabilities, domain.Capability(capability))
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Capabilities: capabilities}, nil
}

func (h *GRPCHost) Generate(ctx context.Context, manifest domain.Manifest, req domain.Request) (domain.Exercise, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return domain.Exercise{}, err
	}
	defer closeFn()

	callCtx, cancel := callContext(ctx)
	defer cancel()
	response, err := client.Generate(callCtx, &generatorrpc.GenerateRequest{Pillar: req.Pillar, Difficulty: req.Difficulty})
	if err != nil {
		return domain.Exercise{}, callError("generate", callCtx, err)
	}
	return domain.Exercise{
		Title:        response.Title,
		Mission:      response.Mission,
		TemplateKind: response.TemplateKind,
		Source:       "plugin:" + manifest.Name,
	}, nil
}

func (h *GRPCHost) Diagnose(ctx context.Context, manifest domain.Manifest, detail domain.FailureDetail) (string, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return "", err
	}
	defer closeFn()

	failures := make([]generatorrpc.Failure, 0, len(detail.Failures))
	for _, f := range detail.Failures {
		failures = append(failures, generatorrpc.Failure{Name: f.Name, Message: f.Message})
	}
	callCtx, cancel := callContext(ctx)
	defer cancel()
	response, err := client.Diagnose(callCtx, &generatorrpc.DiagnoseRequest{KataSlug: detail.KataSlug, Failures: failures, Output: detail.Excerpt(2000)})
	if err != nil {
		return "", callError("diagnose", callCtx, err)
	}
	return response.Hint, nil
}

func (h *GRPCHost) connect(manifest domain.Manifest) (generatorrpc.SenseiClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  generatorrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          generatorrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel}),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start plugin client: %w", err)
	}
	raw, err := rpcClient.Dispense(generatorrpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense plugin: %w", err)
	}
	typed, ok := raw.(generatorrpc.SenseiClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("plugin rpc client type mismatch")
	}
	return typed, closeFn, nil
}

func callError(op string, callCtx context.Context, err error) error {
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", domain.ErrPluginTimeout, op)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func callContext(parent context.Context) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, defaultCallTimeout)
}
