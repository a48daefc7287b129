// Where: cli/internal/command/app_test.go
// What: Tests for CLI run behavior.
// Why: Ensure command routing and handler wiring remain stable.
package command

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/poruru/bsam-cli/internal/domain/envset"
	"github.com/poruru/bsam-cli/internal/domain/function"
	"github.com/poruru/bsam-cli/internal/infra/artifacts"
	"github.com/poruru/bsam-cli/internal/infra/config"
	"github.com/poruru/bsam-cli/internal/infra/credentials"
	"github.com/poruru/bsam-cli/internal/infra/docker"
	"github.com/poruru/bsam-cli/internal/infra/platform"
	"github.com/poruru/bsam-cli/internal/usecase/deploy"
	"github.com/poruru/bsam-cli/internal/usecase/invoke"
	"github.com/poruru/bsam-cli/internal/usecase/packaging"
)

const helloTemplate = `Resources:
  HelloWorldFunction:
    Type: AWS::Serverless::Function
    Properties:
      CodeUri: hello_world/
      Handler: app.lambda_handler
      Runtime: python2.7
      Environment:
        Variables:
          STAGE: dev
`

type fixture struct {
	dir  string
	home string
	out  bytes.Buffer
	err  bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{dir: t.TempDir(), home: t.TempDir()}
	writeFile(t, filepath.Join(f.dir, "template.yaml"), helloTemplate)
	writeFile(t, filepath.Join(f.dir, "hello_world", "app.py"), "def lambda_handler(event, context):\n    return 'ok'\n")
	writeFile(t, filepath.Join(f.home, ".bce", "credentials"), "[default]\nbce_access_key_id = AK\nbce_secret_access_key = SK\n")
	writeFile(t, filepath.Join(f.home, ".bce", "config"), "[default]\nregion = gz\n")
	return f
}

func (f *fixture) deps() Dependencies {
	return Dependencies{
		Out:        &f.out,
		ErrOut:     &f.err,
		In:         strings.NewReader(""),
		Getwd:      func() (string, error) { return f.dir, nil },
		HomeDir:    func() (string, error) { return f.home, nil },
		Environ:    func() []string { return []string{"PATH=/usr/bin"} },
		LoadConfig: func() (config.GlobalConfig, error) { return config.DefaultGlobalConfig(), nil },
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

type recordExecutor struct {
	called  bool
	cfg     function.InvocationConfig
	cwd     string
	event   string
	debug   *invoke.DebugContext
	options docker.Options
}

func (r *recordExecutor) Invoke(
	_ context.Context,
	cfg function.InvocationConfig,
	cwd string,
	event string,
	debug *invoke.DebugContext,
	stdout io.Writer,
	_ io.Writer,
) error {
	r.called = true
	r.cfg = cfg
	r.cwd = cwd
	r.event = event
	r.debug = debug
	_, err := io.WriteString(stdout, `"hello world"`)
	return err
}

func (r *recordExecutor) factory(options docker.Options) (invoke.Executor, io.Closer, error) {
	r.options = options
	return r, nil, nil
}

type fakePlatform struct {
	mu      sync.Mutex
	creates []deploy.CreateInput
	updates []deploy.UpdateCodeInput
	present map[string]bool
}

func (p *fakePlatform) GetFunction(_ context.Context, name string) (deploy.RemoteFunction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.present[name] {
		return deploy.RemoteFunction{Name: name}, nil
	}
	return deploy.RemoteFunction{}, deploy.ErrRemoteNotFound
}

func (p *fakePlatform) CreateFunction(_ context.Context, in deploy.CreateInput) (deploy.RemoteFunction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.creates = append(p.creates, in)
	return deploy.RemoteFunction{Name: in.Name, Runtime: in.Runtime, Version: "1"}, nil
}

func (p *fakePlatform) UpdateFunctionCode(_ context.Context, in deploy.UpdateCodeInput) (deploy.RemoteFunction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, in)
	return deploy.RemoteFunction{Name: in.Name, Version: "2"}, nil
}

type fakeUploader struct {
	keys []string
}

func (u *fakeUploader) Upload(_ context.Context, _ string, key string) (string, error) {
	u.keys = append(u.keys, key)
	return "s3://bucket/" + key, nil
}

func TestRunNoArgsPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	if code := Run(nil, Dependencies{Out: &out}); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(out.String(), "local invoke <function>") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRunVersion(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := Run([]string{"version"}, Dependencies{Out: &out, ErrOut: &errOut}); code != 0 {
		t.Fatalf("expected exit code 0, got %d (%s)", code, errOut.String())
	}
	if strings.TrimSpace(out.String()) == "" {
		t.Fatalf("expected version output")
	}
}

func TestRunUnknownFlagFails(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := Run([]string{"deploy", "--no-such-flag"}, Dependencies{Out: &out, ErrOut: &errOut}); code == 0 {
		t.Fatalf("expected non-zero exit code")
	}
	if !strings.Contains(errOut.String(), "[error]") {
		t.Fatalf("unexpected error output: %q", errOut.String())
	}
}

func TestCommandKey(t *testing.T) {
	tests := map[string]string{
		"local invoke <function>": "local invoke",
		"deploy <function>":       "deploy",
		"deploy":                  "deploy",
		"":                        "",
	}
	for in, want := range tests {
		if got := commandKey(in); got != want {
			t.Fatalf("commandKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRunLocalInvokePassesResolvedConfig(t *testing.T) {
	f := newFixture(t)
	executor := &recordExecutor{}
	deps := f.deps()
	deps.NewExecutor = executor.factory

	code := Run([]string{"local", "invoke", "HelloWorldFunction", "--docker-network", "lambda-net"}, deps)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, f.err.String())
	}
	if !executor.called {
		t.Fatalf("expected executor to run")
	}
	if executor.event != invoke.DefaultEvent {
		t.Fatalf("unexpected event: %q", executor.event)
	}
	if executor.cwd != f.dir {
		t.Fatalf("unexpected cwd: %q", executor.cwd)
	}
	if executor.cfg.CodeAbsPath != filepath.Join(f.dir, "hello_world") {
		t.Fatalf("unexpected code path: %q", executor.cfg.CodeAbsPath)
	}
	if executor.cfg.Timeout != invoke.DefaultTimeout || executor.cfg.Memory != invoke.DefaultMemory {
		t.Fatalf("unexpected limits: %d/%d", executor.cfg.Timeout, executor.cfg.Memory)
	}
	if value, _ := executor.cfg.Env.Get(envset.KeyAccessKeyID); value != "AK" {
		t.Fatalf("unexpected access key: %q", value)
	}
	if value, _ := executor.cfg.Env.Get("STAGE"); value != "dev" {
		t.Fatalf("unexpected STAGE: %q", value)
	}
	if executor.debug != nil {
		t.Fatalf("expected no debug context")
	}
	if executor.options.Network != "lambda-net" {
		t.Fatalf("unexpected network: %q", executor.options.Network)
	}
	if f.out.String() != `"hello world"` {
		t.Fatalf("unexpected stdout: %q", f.out.String())
	}
}

func TestRunLocalInvokeAppliesOverridesAndDebug(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.dir, "env.json"), `{"HelloWorldFunction": {"STAGE": "prod"}}`)
	writeFile(t, filepath.Join(f.dir, "event.json"), `{"key": "value"}`)
	executor := &recordExecutor{}
	deps := f.deps()
	deps.NewExecutor = executor.factory

	code := Run([]string{
		"local", "invoke", "HelloWorldFunction",
		"-e", "event.json", "-n", "env.json", "-d", "5858",
	}, deps)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, f.err.String())
	}
	if value, _ := executor.cfg.Env.Get("STAGE"); value != "prod" {
		t.Fatalf("unexpected STAGE: %q", value)
	}
	if executor.event != `{"key": "value"}` {
		t.Fatalf("unexpected event: %q", executor.event)
	}
	if !executor.debug.Active() || executor.debug.Port != 5858 {
		t.Fatalf("unexpected debug context: %+v", executor.debug)
	}
	if executor.cfg.Timeout != invoke.MaxDebugTimeout {
		t.Fatalf("unexpected timeout: %d", executor.cfg.Timeout)
	}
}

func TestRunLocalInvokeReadsEventFromStdin(t *testing.T) {
	f := newFixture(t)
	executor := &recordExecutor{}
	deps := f.deps()
	deps.In = strings.NewReader(`{"from": "stdin"}`)
	deps.NewExecutor = executor.factory

	if code := Run([]string{"local", "invoke", "HelloWorldFunction", "--event", "-"}, deps); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, f.err.String())
	}
	if executor.event != `{"from": "stdin"}` {
		t.Fatalf("unexpected event: %q", executor.event)
	}
}

func TestRunLocalInvokeUnknownFunction(t *testing.T) {
	f := newFixture(t)
	executor := &recordExecutor{}
	deps := f.deps()
	deps.NewExecutor = executor.factory

	if code := Run([]string{"local", "invoke", "Missing"}, deps); code == 0 {
		t.Fatalf("expected non-zero exit code")
	}
	if executor.called {
		t.Fatalf("executor must not run for an unknown function")
	}
	if !strings.Contains(f.err.String(), "unable to find a function with name 'Missing'") {
		t.Fatalf("unexpected error output: %q", f.err.String())
	}
}

func TestRunLocalInvokeMissingCredentialStore(t *testing.T) {
	f := newFixture(t)
	executor := &recordExecutor{}
	deps := f.deps()
	deps.HomeDir = func() (string, error) { return t.TempDir(), nil }
	deps.NewExecutor = executor.factory

	if code := Run([]string{"local", "invoke", "HelloWorldFunction"}, deps); code == 0 {
		t.Fatalf("expected non-zero exit code")
	}
	if executor.called {
		t.Fatalf("executor must not run without credentials")
	}
	if !strings.Contains(f.err.String(), "Hint: ") {
		t.Fatalf("expected credential hint, got %q", f.err.String())
	}
}

func TestRunPackageWritesArchivesNextToTemplate(t *testing.T) {
	f := newFixture(t)

	if code := Run([]string{"--no-emoji", "package", "--verbose"}, f.deps()); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, f.out.String())
	}
	if _, err := os.Stat(filepath.Join(f.dir, "HelloWorldFunction.zip")); err != nil {
		t.Fatalf("expected archive: %v", err)
	}
	output := f.out.String()
	if !strings.Contains(output, "- app.py") || !strings.Contains(output, "[ok] Packaged 1 function(s)") {
		t.Fatalf("unexpected output: %q", output)
	}
}

func TestRunPackageUploadsWithBucket(t *testing.T) {
	f := newFixture(t)
	uploader := &fakeUploader{}
	var settings artifacts.Settings
	deps := f.deps()
	deps.NewUploader = func(_ context.Context, _ credentials.Source, s artifacts.Settings) (packaging.Uploader, error) {
		settings = s
		return uploader, nil
	}

	code := Run([]string{"package", "--s3-bucket", "code", "--s3-prefix", "releases", "--output-dir", "dist"}, deps)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, f.out.String())
	}
	if settings.Bucket != "code" || settings.Region != "gz" {
		t.Fatalf("unexpected settings: %+v", settings)
	}
	if len(uploader.keys) != 1 || uploader.keys[0] != "releases/HelloWorldFunction.zip" {
		t.Fatalf("unexpected keys: %v", uploader.keys)
	}
	if _, err := os.Stat(filepath.Join(f.dir, "dist", "HelloWorldFunction.zip")); err != nil {
		t.Fatalf("expected archive in output dir: %v", err)
	}
}

func TestRunDeployCreatesMissingFunction(t *testing.T) {
	f := newFixture(t)
	remote := &fakePlatform{}
	var factory platform.Factory
	deps := f.deps()
	deps.NewPlatform = func(_ context.Context, fac platform.Factory) (deploy.Platform, error) {
		factory = fac
		return remote, nil
	}

	code := Run([]string{"--no-emoji", "deploy", "--package", "--endpoint", "http://localhost:9000"}, deps)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, f.out.String())
	}
	if factory.Settings.Endpoint != "http://localhost:9000" {
		t.Fatalf("unexpected endpoint: %q", factory.Settings.Endpoint)
	}
	if len(remote.creates) != 1 || len(remote.updates) != 0 {
		t.Fatalf("unexpected calls: creates=%d updates=%d", len(remote.creates), len(remote.updates))
	}
	created := remote.creates[0]
	if created.Name != "HelloWorldFunction" || created.Region != "gz" || created.Runtime != "python2" {
		t.Fatalf("unexpected create input: %+v", created)
	}
	if !strings.Contains(f.out.String(), "create") || !strings.Contains(f.out.String(), "Deployed 1 function(s)") {
		t.Fatalf("unexpected output: %q", f.out.String())
	}
}

func TestRunDeployUpdatesSelectedFunction(t *testing.T) {
	f := newFixture(t)
	remote := &fakePlatform{present: map[string]bool{"HelloWorldFunction": true}}
	deps := f.deps()
	deps.NewPlatform = func(context.Context, platform.Factory) (deploy.Platform, error) { return remote, nil }

	if code := Run([]string{"deploy", "HelloWorldFunction", "--package"}, deps); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, f.out.String())
	}
	if len(remote.updates) != 1 || !remote.updates[0].Publish {
		t.Fatalf("unexpected updates: %+v", remote.updates)
	}
}

func TestRunDeployUnknownFunctionSkipsPlatform(t *testing.T) {
	f := newFixture(t)
	called := false
	deps := f.deps()
	deps.NewPlatform = func(context.Context, platform.Factory) (deploy.Platform, error) {
		called = true
		return &fakePlatform{}, nil
	}

	if code := Run([]string{"deploy", "Missing"}, deps); code == 0 {
		t.Fatalf("expected non-zero exit code")
	}
	if called {
		t.Fatalf("platform must not be built for an unknown function")
	}
}

func TestRunDeployWithoutArchiveFailsBeforeNetwork(t *testing.T) {
	f := newFixture(t)
	remote := &fakePlatform{}
	deps := f.deps()
	deps.NewPlatform = func(context.Context, platform.Factory) (deploy.Platform, error) { return remote, nil }

	if code := Run([]string{"deploy"}, deps); code == 0 {
		t.Fatalf("expected non-zero exit code")
	}
	if len(remote.creates)+len(remote.updates) != 0 {
		t.Fatalf("unexpected platform calls")
	}
}

func TestRunInitWritesScaffold(t *testing.T) {
	f := newFixture(t)
	deps := f.deps()

	code := Run([]string{"init", "--name", "demo", "--runtime", "nodejs6.11"}, deps)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, f.out.String())
	}
	for _, rel := range []string{"template.yaml", "env.json", filepath.Join("hello_world", "app.js")} {
		if _, err := os.Stat(filepath.Join(f.dir, "demo", rel)); err != nil {
			t.Fatalf("expected %s: %v", rel, err)
		}
	}
	if !strings.Contains(f.out.String(), "nodejs6.11") {
		t.Fatalf("unexpected output: %q", f.out.String())
	}
}
