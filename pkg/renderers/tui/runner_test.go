package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-recoform/pkg/form"
	"github.com/goliatone/go-recoform/pkg/model"
	"github.com/goliatone/go-recoform/pkg/renderers/text"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	infoMessages []string
	inputDefs    []string
	inputHelps   []string
	selectDefs   []int
	inputPos     int
	selectPos    int
	confirmPos   int
	abortOnInput bool
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.abortOnInput {
		return "", ErrAborted
	}
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	s.inputDefs = append(s.inputDefs, cfg.Default)
	s.inputHelps = append(s.inputHelps, cfg.Help)
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	s.selectDefs = append(s.selectDefs, cfg.DefaultIndex)
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func newTestForm(t *testing.T, fn form.RecommenderFunc) *form.Form {
	t.Helper()
	f, err := form.New(model.DefaultFormModel(), fn, form.WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("form.New: %v", err)
	}
	t.Cleanup(f.Close)
	return f
}

func TestRunnerLoop(t *testing.T) {
	var calls []string
	f := newTestForm(t, func(_ context.Context, method model.Method, identifier string) ([]string, error) {
		calls = append(calls, string(method)+":"+identifier)
		if method == model.MethodItemBased {
			return nil, errors.New("boom")
		}
		return []string{"A", "B"}, nil
	})

	driver := &stubDriver{
		// user_based, then item_based with an empty id, then item_based again
		selectIdx: []int{0, 1, 1},
		inputs:    []string{"42", "", "sku-9"},
		confirm:   []bool{true, true, false},
	}
	runner, err := New(f, WithPromptDriver(driver), WithTextRenderer(text.New(text.WithPlain(), text.WithHeader(false))), WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if diff := cmp.Diff([]string{"user_based:42", "item_based:sku-9"}, calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	wantInfo := []string{
		"Recommended Products\n  1. A\n  2. B\n",
		"✗ Item ID is required\nRecommended Products\n  1. A\n  2. B\n",
		"✗ " + form.MessageGeneric + "\n",
	}
	if diff := cmp.Diff(wantInfo, driver.infoMessages); diff != "" {
		t.Fatalf("panel output mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 0, 1}, driver.selectDefs); diff != "" {
		t.Fatalf("select defaults mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"", "", ""}, driver.inputDefs); diff != "" {
		t.Fatalf("input defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestRunnerEmptyInputReachesValidation(t *testing.T) {
	var calls []string
	f := newTestForm(t, func(_ context.Context, method model.Method, identifier string) ([]string, error) {
		calls = append(calls, string(method)+":"+identifier)
		return []string{"A"}, nil
	})
	driver := &stubDriver{
		// user_based then svd, which shares the user id
		selectIdx: []int{0, 3},
		inputs:    []string{"7", ""},
		confirm:   []bool{true, false},
	}
	runner, err := New(f, WithPromptDriver(driver), WithTextRenderer(text.New(text.WithPlain())))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if diff := cmp.Diff([]string{"user_based:7"}, calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"", ""}, driver.inputDefs); diff != "" {
		t.Fatalf("input defaults mismatch (-want +got):\n%s", diff)
	}
	if strings.Contains(driver.inputHelps[0], "last entered") || !strings.Contains(driver.inputHelps[1], "last entered: 7") {
		t.Fatalf("unexpected input hints %q", driver.inputHelps)
	}
	if !strings.Contains(driver.infoMessages[0], "Method: User-Based CF") {
		t.Fatalf("expected header in output, got %q", driver.infoMessages[0])
	}
	if !strings.Contains(driver.infoMessages[1], "User ID is required") || !strings.Contains(driver.infoMessages[1], "1. A") {
		t.Fatalf("empty answer should fail validation and keep results, got %q", driver.infoMessages[1])
	}
}

func TestRunnerAbortIsClean(t *testing.T) {
	f := newTestForm(t, func(context.Context, model.Method, string) ([]string, error) {
		t.Fatal("recommender must not be called")
		return nil, nil
	})
	driver := &stubDriver{selectIdx: []int{2}, abortOnInput: true}
	runner, err := New(f, WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunnerOnce(t *testing.T) {
	f := newTestForm(t, func(context.Context, model.Method, string) ([]string, error) {
		return nil, nil
	})
	driver := &stubDriver{selectIdx: []int{2}, inputs: []string{"p1"}}
	runner, err := New(f, WithPromptDriver(driver), WithOnce())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if driver.confirmPos != 0 {
		t.Fatal("confirm prompt shown in once mode")
	}
}

func TestRunnerRejectsOutOfRangeSelection(t *testing.T) {
	f := newTestForm(t, func(context.Context, model.Method, string) ([]string, error) {
		return nil, nil
	})
	runner, err := New(f, WithPromptDriver(&stubDriver{selectIdx: []int{-1}}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := runner.Run(context.Background()); err == nil {
		t.Fatal("expected error for out of range selection")
	}
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil form")
	}
}
