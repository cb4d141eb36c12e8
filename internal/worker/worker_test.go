// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package worker

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/clearclown/markpdfdown/internal/container"
	"github.com/clearclown/markpdfdown/pkg/types"
)

// fakeRuntime implements container.Runtime for testing. It records the last
// RunSpec and plays back canned stdout/stderr.
type fakeRuntime struct {
	stdout   string
	stderr   string
	runErr   error
	imageErr error

	lastSpec container.RunSpec
	ranInput string
}

func (f *fakeRuntime) Name() string    { return "docker" }
func (f *fakeRuntime) Available() bool { return true }

func (f *fakeRuntime) ImageExists(image string) error { return f.imageErr }

func (f *fakeRuntime) Run(ctx context.Context, spec container.RunSpec) error {
	f.lastSpec = spec
	if spec.Stdin != nil {
		data, _ := io.ReadAll(spec.Stdin)
		f.ranInput = string(data)
	}
	if f.stdout != "" {
		_, _ = spec.Stdout.Write([]byte(f.stdout))
	}
	if f.stderr != "" {
		_, _ = spec.Stderr.Write([]byte(f.stderr))
	}
	return f.runErr
}

func setupRequest(t *testing.T, whole bool) Request {
	t.Helper()
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "doc.pdf")
	if err := os.WriteFile(inputPath, []byte("%PDF-1.4 fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	return Request{
		InputPath: inputPath,
		PartPath:  filepath.Join(dir, "part-001.md"),
		Range:     types.PageRange{Index: 1, Start: 3, End: 7},
		Whole:     whole,
	}
}

func TestNewContainerInvoker(t *testing.T) {
	tests := []struct {
		name    string
		image   string
		rt      *fakeRuntime
		wantErr string
	}{
		{
			name:  "image present",
			image: "markpdfdown:latest",
			rt:    &fakeRuntime{},
		},
		{
			name:    "image missing",
			image:   "markpdfdown:latest",
			rt:      &fakeRuntime{imageErr: errors.New("no such image")},
			wantErr: "not available",
		},
		{
			name:    "image unset",
			image:   "",
			rt:      &fakeRuntime{},
			wantErr: "not configured",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewContainerInvoker(tt.rt, tt.image, "")
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want substring %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestContainerInvokerConvert(t *testing.T) {
	rt := &fakeRuntime{stdout: "```markdown\n# Pages 3-7\n```"}
	inv, err := NewContainerInvoker(rt, "markpdfdown:latest", ".env")
	if err != nil {
		t.Fatal(err)
	}

	req := setupRequest(t, false)
	if err := inv.Convert(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, want := rt.lastSpec.Args, []string{"3", "7"}; !reflect.DeepEqual(got, want) {
		t.Errorf("worker args = %v, want %v", got, want)
	}
	if rt.lastSpec.EnvFile != ".env" {
		t.Errorf("env file = %q, want %q", rt.lastSpec.EnvFile, ".env")
	}
	if rt.ranInput != "%PDF-1.4 fake" {
		t.Errorf("worker stdin = %q, want document bytes", rt.ranInput)
	}

	data, err := os.ReadFile(req.PartPath)
	if err != nil {
		t.Fatalf("reading part: %v", err)
	}
	if string(data) != "# Pages 3-7" {
		t.Errorf("part content = %q, want fence-stripped body", string(data))
	}
}

// Single-job runs convert the whole document without bounds arguments.
func TestContainerInvokerWholeDocument(t *testing.T) {
	rt := &fakeRuntime{stdout: "# Whole doc"}
	inv, err := NewContainerInvoker(rt, "markpdfdown:latest", "")
	if err != nil {
		t.Fatal(err)
	}

	req := setupRequest(t, true)
	if err := inv.Convert(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rt.lastSpec.Args) != 0 {
		t.Errorf("whole-document invocation passed args %v, want none", rt.lastSpec.Args)
	}
}

func TestContainerInvokerFailure(t *testing.T) {
	rt := &fakeRuntime{
		runErr: errors.New("exit status 1"),
		stderr: "traceback: provider refused page 4\n",
	}
	inv, err := NewContainerInvoker(rt, "markpdfdown:latest", "")
	if err != nil {
		t.Fatal(err)
	}

	req := setupRequest(t, false)
	err = inv.Convert(context.Background(), req)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "provider refused page 4") {
		t.Errorf("error should carry worker stderr, got: %v", err)
	}
	if _, statErr := os.Stat(req.PartPath); statErr == nil {
		t.Error("failed conversion should not persist a part file")
	}
}

func TestContainerInvokerEmptyOutput(t *testing.T) {
	rt := &fakeRuntime{stdout: "   \n"}
	inv, err := NewContainerInvoker(rt, "markpdfdown:latest", "")
	if err != nil {
		t.Fatal(err)
	}

	req := setupRequest(t, false)
	err = inv.Convert(context.Background(), req)
	if err == nil || !strings.Contains(err.Error(), "empty output") {
		t.Fatalf("err = %v, want empty output error", err)
	}
}

func TestNewCommandInvoker(t *testing.T) {
	env := map[string]string{
		"BASE_URL": "https://api.example.com",
		"API_KEY":  "sk-123",
	}

	inv, err := NewCommandInvoker("/usr/local/bin/markpdfdown-worker", env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"API_KEY=sk-123", "BASE_URL=https://api.example.com"}
	if !reflect.DeepEqual(inv.extraEnv, want) {
		t.Errorf("extraEnv = %v, want %v", inv.extraEnv, want)
	}
}

func TestNewCommandInvokerErrors(t *testing.T) {
	if _, err := NewCommandInvoker("", nil); err == nil {
		t.Error("empty command should be rejected")
	}
}

func TestCommandInvokerConvert(t *testing.T) {
	inv, err := NewCommandInvoker("markpdfdown-worker", map[string]string{"API_KEY": "sk-123"})
	if err != nil {
		t.Fatal(err)
	}

	var gotArgs []string
	var gotEnv []string
	inv.run = func(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer, env []string) error {
		gotArgs = args
		gotEnv = env
		_, _ = io.Copy(io.Discard, stdin)
		_, _ = stdout.Write([]byte("# Converted"))
		return nil
	}

	req := setupRequest(t, false)
	if err := inv.Convert(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := []string{"3", "7"}; !reflect.DeepEqual(gotArgs, want) {
		t.Errorf("args = %v, want %v", gotArgs, want)
	}

	found := false
	for _, kv := range gotEnv {
		if kv == "API_KEY=sk-123" {
			found = true
		}
	}
	if !found {
		t.Error("child environment should carry env file entries")
	}

	data, err := os.ReadFile(req.PartPath)
	if err != nil {
		t.Fatalf("reading part: %v", err)
	}
	if string(data) != "# Converted" {
		t.Errorf("part content = %q", string(data))
	}
}

func TestTailBuffer(t *testing.T) {
	tb := newTailBuffer(8)
	_, _ = tb.Write([]byte("0123456789abcdef"))
	if got := tb.Tail(); got != "89abcdef" {
		t.Errorf("Tail() = %q, want last 8 bytes", got)
	}
}
