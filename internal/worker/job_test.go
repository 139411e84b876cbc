package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/backmassage/bgsub/internal/config"
)

func TestNewJob_UniqueIDs(t *testing.T) {
	a := NewJob("/b/a.mp4", "/v/a.mp4", config.SubtractorMOG2)
	b := NewJob("/b/b.mp4", "/v/b.mp4", config.SubtractorMOG2)
	if a.ID == "" || b.ID == "" {
		t.Fatal("job IDs must not be empty")
	}
	if a.ID == b.ID {
		t.Errorf("job IDs collide: %s", a.ID)
	}
}

func TestJobResult_Done(t *testing.T) {
	job := NewJob("/b/a.mp4", "/v/a.mp4", config.SubtractorKNN)

	ok := Succeeded(job, 1234)
	if !ok.Done() || ok.Frames != 1234 || ok.JobID != job.ID {
		t.Errorf("Succeeded result malformed: %+v", ok)
	}

	bad := Failed(job, errors.New("boom"))
	if bad.Done() || bad.Error != "boom" {
		t.Errorf("Failed result malformed: %+v", bad)
	}
}

func TestRunWorker_RoundTrip(t *testing.T) {
	job := NewJob("/backup/a.mp4", "/videos/a.mp4", config.SubtractorMOG2)
	payload, err := json.Marshal(job)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	convert := func(_ context.Context, got ConversionJob) JobResult {
		if got.ID != job.ID || got.Subtractor != config.SubtractorMOG2 {
			t.Errorf("job did not survive the wire: %+v", got)
		}
		return Succeeded(got, 99)
	}

	if err := RunWorker(context.Background(), bytes.NewReader(payload), &out, convert); err != nil {
		t.Fatalf("RunWorker: %v", err)
	}

	var res JobResult
	if err := json.Unmarshal(bytes.TrimSpace(out.Bytes()), &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.JobID != job.ID || res.Frames != 99 || !res.Done() {
		t.Errorf("result = %+v", res)
	}
}

func TestRunWorker_JobFailureIsDataNotError(t *testing.T) {
	job := NewJob("/backup/a.mp4", "/videos/a.mp4", config.SubtractorKNN)
	payload, _ := json.Marshal(job)

	var out bytes.Buffer
	convert := func(_ context.Context, got ConversionJob) JobResult {
		return Failed(got, errors.New("frame 7: malformed frame"))
	}

	if err := RunWorker(context.Background(), bytes.NewReader(payload), &out, convert); err != nil {
		t.Fatalf("RunWorker must not error for a failed job, got: %v", err)
	}

	var res JobResult
	if err := json.Unmarshal(bytes.TrimSpace(out.Bytes()), &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.Done() || !strings.Contains(res.Error, "malformed frame") {
		t.Errorf("result = %+v", res)
	}
}

func TestRunWorker_BadInput(t *testing.T) {
	convert := func(_ context.Context, job ConversionJob) JobResult {
		t.Error("convert must not run for undecodable input")
		return Succeeded(job, 0)
	}

	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"not json", "this is not json"},
		{"missing paths", `{"id":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := RunWorker(context.Background(), strings.NewReader(tt.input), &out, convert)
			if err == nil {
				t.Error("expected protocol error")
			}
			if out.Len() != 0 {
				t.Errorf("nothing should be written on protocol error, got %q", out.String())
			}
		})
	}
}
