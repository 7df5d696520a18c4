package runtime

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/Masterminds/semver/v3"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		out     string
		want    string
		wantErr bool
	}{
		{"v20.11.1\n", "20.11.1", false},
		{"v18.0.0", "18.0.0", false},
		{"  v16.20.2  \n", "16.20.2", false},
		{"v21.0.0-nightly20230801", "21.0.0-nightly20230801", false},
		{"", "", true},
		{"node: command not found", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.out, func(t *testing.T) {
			v, err := ParseVersion(tt.out)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.out)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.String() != tt.want {
				t.Errorf("ParseVersion(%q) = %s, want %s", tt.out, v, tt.want)
			}
		})
	}
}

func TestSatisfies(t *testing.T) {
	const graphqlRange = "^14.19.0 || ^16.10.0 || >=18.0.0"

	tests := []struct {
		rng     string
		version string
		ok      bool
	}{
		{graphqlRange, "14.19.0", true},
		{graphqlRange, "14.18.3", false},
		{graphqlRange, "15.0.0", false},
		{graphqlRange, "16.10.0", true},
		{graphqlRange, "17.9.1", false},
		{graphqlRange, "20.11.1", true},
		{">=16", "16.0.0", true},
		{">=16", "12.22.12", false},
	}
	for _, tt := range tests {
		t.Run(tt.rng+" "+tt.version, func(t *testing.T) {
			err := Satisfies("node", tt.rng, semver.MustParse(tt.version))
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok {
				var ee *EngineError
				if !errors.As(err, &ee) {
					t.Fatalf("expected *EngineError, got %v", err)
				}
				if ee.Range != tt.rng {
					t.Errorf("Range = %q", ee.Range)
				}
			}
		})
	}
}

func TestSatisfies_InvalidRange(t *testing.T) {
	err := Satisfies("node", "not a range", semver.MustParse("20.0.0"))
	if err == nil {
		t.Fatal("expected error for invalid range")
	}
	var ee *EngineError
	if errors.As(err, &ee) {
		t.Error("an unparsable range is not an engine mismatch")
	}
}

func TestNode_DetectMissingBinary(t *testing.T) {
	n := &Node{Bin: "distpack-no-such-node"}
	if _, err := n.Detect(context.Background()); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestNode_Detect(t *testing.T) {
	if _, err := exec.LookPath("node"); err != nil {
		t.Skip("Node.js not available, skipping")
	}

	info, err := (&Node{}).Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if info.Path == "" || info.Version == nil {
		t.Errorf("incomplete info: %+v", info)
	}
}
