package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikola254/breaking-news-sub000/internal/models"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassifyCommand(t *testing.T) {
	out, err := run(t, "", "classify", "--offline", "Я", "убью", "всех", "врагов,", "скоро", "будет", "взрыв")
	require.NoError(t, err)
	assert.Contains(t, out, "label:      extremist")
	assert.Contains(t, out, "risk:       critical (score 26.00, 86%)")
}

func TestClassifyCommand_JSONFromStdin(t *testing.T) {
	out, err := run(t, "обычный текст", "classify", "--json", "-f", "-")
	require.NoError(t, err)

	var res models.ClassificationResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, models.LabelNormal, res.Label)
	assert.Equal(t, "rule_based", res.AnalysisMethod)
}

func TestClassifyCommand_NoInput(t *testing.T) {
	_, err := run(t, "", "classify")
	assert.Error(t, err)
}

func TestPercentageCommand(t *testing.T) {
	out, err := run(t, "", "percentage", "скоро будет взрыв")
	require.NoError(t, err)

	var res models.ExtremismAssessment
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, models.MethodLocal, res.Method)
}

func TestBatchCommand(t *testing.T) {
	out, err := run(t, "первый\n\nвторой\n", "batch", "-f", "-")
	require.NoError(t, err)

	var items []models.BatchItem
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "второй", items[1].Text)
}

func TestTrainCommand(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "train.csv")
	model := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(data, []byte(
		"text,label\n"+
			"взорвать здание,1\n"+
			"готовим теракт,1\n"+
			"берите оружие,1\n"+
			"хорошая погода,0\n"+
			"вкусный обед,0\n"+
			"новый фильм,0\n"), 0o644))

	out, err := run(t, "", "train", "--data", data, "--out", model)
	require.NoError(t, err)
	assert.Contains(t, out, "trained on 6 samples")
	assert.FileExists(t, model)

	_, err = run(t, "", "train", "--data", filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestReadTrainingCSV_BadLabel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,1\nb,x\n"), 0o644))

	_, _, err := readTrainingCSV(path)
	assert.ErrorContains(t, err, "row 2")
}
