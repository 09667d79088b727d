package backend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/vidyaai/diagramgen/internal/diagram"
	"github.com/vidyaai/diagramgen/internal/llm"
	"github.com/vidyaai/diagramgen/internal/sandbox"
)

func TestRegistry_ResolvesByBackend(t *testing.T) {
	runner := sandbox.NewRunner(sandbox.DefaultConfig(), zap.NewNop())
	reg := NewRegistry(
		NewProcedural(runner),
		NewCircuit(runner),
		NewGraph(runner),
		NewMarkup(),
		NewImage(llm.NewMockImageProvider(), zap.NewNop()),
	)

	for _, b := range []diagram.Backend{
		diagram.BackendProcedural, diagram.BackendCircuit, diagram.BackendGraph,
		diagram.BackendMarkup, diagram.BackendImage,
	} {
		r, err := reg.Get(b)
		if err != nil {
			t.Fatalf("Get(%s): %v", b, err)
		}
		if r.Name() != string(b) {
			t.Fatalf("Get(%s) returned renderer %q", b, r.Name())
		}
	}
}

func TestRegistry_MissingBackendUnavailable(t *testing.T) {
	reg := NewRegistry(NewMarkup(), NewImage(nil, nil))

	_, err := reg.Get(diagram.BackendImage)
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got: %v", err)
	}
	_, err = reg.Get(diagram.BackendProcedural)
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got: %v", err)
	}
}

func TestFixSupport_OnlyImageBackend(t *testing.T) {
	runner := sandbox.NewRunner(sandbox.DefaultConfig(), zap.NewNop())
	fixless := []Renderer{
		NewProcedural(runner), NewCircuit(runner), NewGraph(runner), NewMarkup(),
	}
	for _, r := range fixless {
		if r.Capabilities().SupportsFix {
			t.Fatalf("%s must not support in-place fix", r.Name())
		}
	}

	img := NewImage(llm.NewMockImageProvider(), zap.NewNop())
	if !img.Capabilities().SupportsFix {
		t.Fatal("image backend must support in-place fix")
	}
	if _, ok := img.(Fixer); !ok {
		t.Fatal("image backend does not implement Fixer")
	}
}

func TestImageRender_NoPayloadIsError(t *testing.T) {
	mock := llm.NewMockImageProvider(llm.MockImageResult{Image: nil})
	r := NewImage(mock, zap.NewNop())

	_, err := r.Render(context.Background(), &diagram.RenderSpec{
		Backend:     diagram.BackendImage,
		Subtype:     "imagen",
		Description: "Two meshing spur gears with tooth counts labeled",
	})
	if err == nil {
		t.Fatal("expected error for missing image payload")
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected one model call, got %d", mock.CallCount())
	}
}

func TestImageRender_PromptCarriesDescription(t *testing.T) {
	mock := llm.NewMockImageProvider(llm.MockImageResult{Image: []byte("png")})
	r := NewImage(mock, zap.NewNop())

	img, err := r.Render(context.Background(), &diagram.RenderSpec{
		Backend:     diagram.BackendImage,
		Subtype:     "imagen",
		Description: "Ball-and-stick model of methane",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(img) == 0 {
		t.Fatal("expected image bytes")
	}
	prompt := mock.Calls[0].Prompt
	if !strings.Contains(prompt, "methane") {
		t.Fatalf("description missing from prompt:\n%s", prompt)
	}
	if mock.Calls[0].SourceImage != nil {
		t.Fatal("plain render must not attach a source image")
	}
}

func TestImageFix_AttachesSourceImageAndIssues(t *testing.T) {
	mock := llm.NewMockImageProvider(llm.MockImageResult{Image: []byte("fixed")})
	r := NewImage(mock, zap.NewNop()).(Fixer)

	out, err := r.Fix(context.Background(),
		&diagram.RenderSpec{Description: "Pulley system with two masses"},
		[]byte("original"),
		[]string{"mass m2 is unlabeled", "rope tension arrow missing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "fixed" {
		t.Fatalf("unexpected output: %q", out)
	}
	call := mock.Calls[0]
	if call.SourceImage == nil || string(call.SourceImage.Data) != "original" {
		t.Fatal("fix must send the rejected image back")
	}
	if !strings.Contains(call.Prompt, "m2 is unlabeled") {
		t.Fatalf("issues missing from fix prompt:\n%s", call.Prompt)
	}
}

func TestMarkupRender_MalformedSourceFails(t *testing.T) {
	r := NewMarkup()
	_, err := r.Render(context.Background(), &diagram.RenderSpec{
		Backend: diagram.BackendMarkup,
		Subtype: "svg",
		Source:  "<svg><rect",
	})
	if err == nil {
		t.Fatal("expected conversion error")
	}
}
