package distribution

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shipwright/internal/config"
	"shipwright/internal/sdkpath"
	"shipwright/internal/stamp"
	"shipwright/internal/testsupport"
)

type fakeBuilder struct {
	err          error
	invoked      bool
	sawStamp     bool
	stampToCheck string
}

func (f *fakeBuilder) Build(ctx context.Context, outputDir string) error {
	f.invoked = true
	if f.stampToCheck != "" {
		if _, err := os.Stat(f.stampToCheck); err == nil {
			f.sawStamp = true
		}
	}
	return f.err
}

type fakeResolver struct {
	dir string
	err error
}

func (f fakeResolver) LocateCRT(arch string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.dir, nil
}

type fakeSigner struct {
	mode   config.SigningMode
	signed []string
	err    error
}

func (f *fakeSigner) Sign(ctx context.Context, files []string) error {
	f.signed = append(f.signed, files...)
	return f.err
}

func (f *fakeSigner) Mode() config.SigningMode {
	return f.mode
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return testsupport.NewConfig(t)
}

func crtDirWithDLLs(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		testsupport.WriteFile(t, filepath.Join(dir, name), 64)
	}
	return dir
}

func TestGenerateHappyPath(t *testing.T) {
	cfg := testConfig(t)
	builder := &fakeBuilder{stampToCheck: filepath.Join(cfg.Paths.SourceDir, stamp.FileName)}
	resolver := fakeResolver{dir: crtDirWithDLLs(t, "ucrtbase.dll", "api-ms-win-core.dll", "notes.txt")}
	signer := &fakeSigner{mode: config.SigningCertificate}

	gen := NewGenerator(cfg, builder, resolver, signer)
	if err := gen.Generate(context.Background()); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !builder.invoked {
		t.Fatal("builder was not invoked")
	}
	if !builder.sawStamp {
		t.Fatal("version stamp must exist before the external build runs")
	}
	for _, dll := range []string{"ucrtbase.dll", "api-ms-win-core.dll"} {
		if _, err := os.Stat(filepath.Join(cfg.Paths.DistDir(), dll)); err != nil {
			t.Errorf("runtime library %s not copied: %v", dll, err)
		}
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.DistDir(), "notes.txt")); err == nil {
		t.Error("non-DLL file should not be copied")
	}
	want := []string{"myapp.exe", "myapp_uiAccess.exe", "myapp_service.exe", "myapp_updater.exe"}
	if len(signer.signed) != len(want) {
		t.Fatalf("signed %v, want %d entry points", signer.signed, len(want))
	}
	for i, name := range want {
		if filepath.Base(signer.signed[i]) != name {
			t.Errorf("signed[%d] = %s, want %s", i, signer.signed[i], name)
		}
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.SourceDir, stamp.FileName)); !os.IsNotExist(err) {
		t.Error("version stamp should be cleaned up after a successful build")
	}
}

func TestGenerateSkipsSigningWhenDisabled(t *testing.T) {
	cfg := testConfig(t)
	builder := &fakeBuilder{}
	resolver := fakeResolver{dir: crtDirWithDLLs(t, "ucrtbase.dll")}
	signer := &fakeSigner{mode: config.SigningDisabled}

	gen := NewGenerator(cfg, builder, resolver, signer)
	if err := gen.Generate(context.Background()); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(signer.signed) != 0 {
		t.Fatalf("signer invoked with %v despite disabled mode", signer.signed)
	}
}

func TestGenerateBuildFailureCleansStamp(t *testing.T) {
	cfg := testConfig(t)
	builder := &fakeBuilder{err: errors.New("compilation halted")}
	resolver := fakeResolver{dir: crtDirWithDLLs(t, "ucrtbase.dll")}

	gen := NewGenerator(cfg, builder, resolver, &fakeSigner{mode: config.SigningDisabled})
	if err := gen.Generate(context.Background()); err == nil {
		t.Fatal("expected build failure to propagate")
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.SourceDir, stamp.FileName)); !os.IsNotExist(err) {
		t.Error("version stamp should be cleaned up even when the build fails")
	}
}

func TestGenerateMissingRuntimeLibrariesIsFatal(t *testing.T) {
	cfg := testConfig(t)
	builder := &fakeBuilder{}
	resolver := fakeResolver{err: &sdkpath.NotFoundError{Resource: "CRT DLLs"}}

	gen := NewGenerator(cfg, builder, resolver, &fakeSigner{mode: config.SigningDisabled})
	err := gen.Generate(context.Background())
	var notFound *sdkpath.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestGenerateEmptyRuntimeDirIsFatal(t *testing.T) {
	cfg := testConfig(t)
	builder := &fakeBuilder{}
	resolver := fakeResolver{dir: t.TempDir()}

	gen := NewGenerator(cfg, builder, resolver, &fakeSigner{mode: config.SigningDisabled})
	if err := gen.Generate(context.Background()); err == nil {
		t.Fatal("expected error when no redistributables are present")
	}
}
