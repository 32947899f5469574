package policy

import (
	"context"
	"testing"
)

func TestDefaultPolicyDecisions(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	cases := []struct {
		name  string
		input UploadInput
		want  string
	}{
		{"plain text allowed", UploadInput{Filename: "notes.txt", SizeBytes: 100, MaxBytes: 1000}, "allow"},
		{"pdf allowed", UploadInput{Filename: "report.pdf", SizeBytes: 500, MaxBytes: 1000}, "allow"},
		{"exe denied", UploadInput{Filename: "setup.exe", SizeBytes: 10, MaxBytes: 1000}, "deny"},
		{"exe denied case-insensitive", UploadInput{Filename: "SETUP.EXE", SizeBytes: 10, MaxBytes: 1000}, "deny"},
		{"dll denied", UploadInput{Filename: "lib.dll", SizeBytes: 10, MaxBytes: 1000}, "deny"},
		{"oversized denied", UploadInput{Filename: "big.txt", SizeBytes: 2000, MaxBytes: 1000}, "deny"},
		{"at limit allowed", UploadInput{Filename: "edge.txt", SizeBytes: 1000, MaxBytes: 1000}, "allow"},
		{"no limit configured", UploadInput{Filename: "big.txt", SizeBytes: 2000, MaxBytes: 0}, "allow"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := engine.Evaluate(ctx, tc.input)
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewEngineRejectsBrokenPolicy(t *testing.T) {
	if _, err := NewEngine(context.Background(), "package upload_policy\n\ndecision = {"); err == nil {
		t.Fatalf("expected error for malformed policy")
	}
}
