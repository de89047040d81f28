package driver

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"rift/internal/buildpipeline"
	"rift/internal/diag"
	"rift/internal/project"
)

// cacheKey derives the content hash guarding one output: the input
// bytes combined with every option that changes the listing.
func cacheKey(input string, opts *buildpipeline.CompileOptions) (string, error) {
	content, err := project.HashFile(input)
	if err != nil {
		return "", err
	}
	optDigest := project.HashBytes([]byte(fmt.Sprintf("degrade=%t", opts.DegradeMissing)))
	combined := project.Combine(content, optDigest)
	return hex.EncodeToString(combined[:]), nil
}

func sidecarPath(out string) string { return out + ".hash" }

// cacheLookup reports whether the existing output is still valid for
// the current input and options.
func cacheLookup(input string, opts *buildpipeline.CompileOptions) (bool, buildpipeline.FileResult) {
	out := buildpipeline.OutputPath(input, opts.OutDir)
	res := buildpipeline.FileResult{Path: input, OutPath: out, Bag: diag.NewBag(1)}

	key, err := cacheKey(input, opts)
	if err != nil {
		return false, res
	}
	stored, err := os.ReadFile(sidecarPath(out))
	if err != nil {
		return false, res
	}
	if strings.TrimSpace(string(stored)) != key {
		return false, res
	}
	if _, err := os.Stat(out); err != nil {
		return false, res
	}
	return true, res
}

// cacheStore records the input hash after a successful write. Failures
// here only cost a rebuild next time.
func cacheStore(input string, opts *buildpipeline.CompileOptions) {
	out := buildpipeline.OutputPath(input, opts.OutDir)
	key, err := cacheKey(input, opts)
	if err != nil {
		return
	}
	_ = os.WriteFile(sidecarPath(out), []byte(key+"\n"), 0o644)
}
