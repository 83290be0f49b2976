package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// newTestWriter creates a Writer with captured output for testing.
func newTestWriter() (*Writer, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	w := &Writer{
		out:   stdout,
		err:   stderr,
		color: false,
		quiet: false,
	}
	return w, stdout, stderr
}

func TestNew(t *testing.T) {
	w := New()
	if w == nil {
		t.Fatal("New() returned nil")
	}
	if w.out == nil {
		t.Error("out writer is nil")
	}
	if w.err == nil {
		t.Error("err writer is nil")
	}
}

func TestWriter_SetQuiet(t *testing.T) {
	w, _, _ := newTestWriter()

	w.SetQuiet(true)
	if !w.Quiet() {
		t.Error("SetQuiet(true) did not set quiet")
	}

	w.SetQuiet(false)
	if w.Quiet() {
		t.Error("SetQuiet(false) did not unset quiet")
	}
}

func TestWriter_PrintAndError(t *testing.T) {
	w, stdout, stderr := newTestWriter()

	w.Print("hello %s", "world")
	w.Println("!")
	w.Error("error %d", 42)
	w.Errorln("")

	if got := stdout.String(); got != "hello world!\n" {
		t.Errorf("stdout = %q", got)
	}
	if got := stderr.String(); got != "error 42\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestWriter_Info_Quiet(t *testing.T) {
	w, stdout, _ := newTestWriter()
	w.SetQuiet(true)

	w.Info("hidden")
	w.Section("hidden")
	w.SpecStart("hidden")
	w.SpecDone("hidden", 1)

	if stdout.Len() != 0 {
		t.Errorf("quiet mode wrote %q", stdout.String())
	}
}

func TestWriter_SuccessWarningFailure(t *testing.T) {
	w, stdout, stderr := newTestWriter()

	w.Success("published to %d sinks", 2)
	w.Warning("archive %s unavailable", "gitwiki")
	w.Failure("run aborted")

	if got := stdout.String(); got != "published to 2 sinks\n" {
		t.Errorf("Success() = %q", got)
	}
	want := "warning: archive gitwiki unavailable\nerror: run aborted\n"
	if got := stderr.String(); got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}
}

func TestWriter_SpecLifecycle(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.SpecStart("/build/gcc: make check-gcc")
	w.SpecDone("/build/gcc: make check-gcc", 2)
	w.SpecDone("/build/ld: make check-ld", 1)

	got := stdout.String()
	for _, want := range []string{
		"─── /build/gcc: make check-gcc ───\n",
		"/build/gcc: make check-gcc done (2 suites)\n",
		"/build/ld: make check-ld done (1 suite)\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestWriter_SpecFailed(t *testing.T) {
	w, _, stderr := newTestWriter()

	w.SpecFailed("/b: runtest", errors.New("exec: not found"), "line one\nline two\n")

	want := "/b: runtest failed: exec: not found\nOutput was:\n  line one\n  line two\n"
	if got := stderr.String(); got != want {
		t.Errorf("SpecFailed() = %q, want %q", got, want)
	}
}

func TestWriter_SpecFailed_NoOutput(t *testing.T) {
	w, _, stderr := newTestWriter()

	w.SpecFailed("/b: runtest", errors.New("boom"), "")

	if strings.Contains(stderr.String(), "Output was") {
		t.Errorf("unexpected output header: %q", stderr.String())
	}
}

func TestWriter_ListAndKeyValues(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.List([]string{"a.c", "b.c"})
	w.KeyValues([]string{"Host Name", "Run ID"}, map[string]string{"Host Name": "box", "Run ID": "42"})

	want := "  - a.c\n  - b.c\n  Host Name:  box\n  Run ID:     42\n"
	if got := stdout.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestWriter_ColorKeepsText(t *testing.T) {
	var stdout, stderr bytes.Buffer
	w := NewWithWriters(&stdout, &stderr, true)

	w.Success("ok")
	w.Warning("careful")

	if !strings.Contains(stdout.String(), "ok") {
		t.Errorf("stdout = %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "warning: careful") {
		t.Errorf("stderr = %q", stderr.String())
	}
}
