package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/lexstatcldf/internal/cldf"
	"codeberg.org/snonux/lexstatcldf/internal/cognate"
	"codeberg.org/snonux/lexstatcldf/internal/engine"
	"codeberg.org/snonux/lexstatcldf/internal/flat"
	"codeberg.org/snonux/lexstatcldf/internal/logging"
	"codeberg.org/snonux/lexstatcldf/internal/testutil"
)

func newTestOrchestrator(fake *testutil.FakeEngine, classifier *testutil.FakeClassifier) *Orchestrator {
	newEngine := func() engine.Engine { return fake }
	if classifier == nil {
		return New(newEngine, nil, logging.Discard())
	}
	return New(newEngine, classifier, logging.Discard())
}

func testConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	cfg.StagingDir = t.TempDir()
	zero := 0.0
	cfg.Threshold = &zero
	return cfg
}

func TestRunSharedCognates(t *testing.T) {
	for _, kind := range []flat.Kind{flat.KindFile, flat.KindMemory} {
		t.Run(string(kind), func(t *testing.T) {
			path := testutil.CreateWordlist(t, testutil.SampleForms())
			fake := testutil.NewFakeEngine(kind)
			cfg := testConfig(t)

			outcome, err := newTestOrchestrator(fake, nil).Run(context.Background(), testutil.LoadDataset(t, path), cfg)
			require.NoError(t, err)

			assert.Equal(t, []State{StateIdle, StatePreflightCheck, StateClustered, StateAligned, StateDone}, outcome.States)
			assert.Equal(t, StateDone, outcome.State())
			assert.Equal(t, kind, fake.Source.Kind)

			require.Equal(t, 2, outcome.Table.Emitted())
			assert.Equal(t, []string{"B"}, outcome.Table.Skipped)
			assert.Equal(t, "C", outcome.Table.Rows[1].Reference)
			assert.Equal(t, 2, outcome.Table.Rows[1].Position)

			require.Len(t, outcome.Cognates, 2)
			assert.Equal(t, "A", outcome.Cognates[0].FormID)
			assert.Equal(t, "C", outcome.Cognates[1].FormID)
			assert.Equal(t, outcome.Cognates[0].CognatesetID, outcome.Cognates[1].CognatesetID)

			rows, err := cognate.Read(testutil.LoadDataset(t, path))
			require.NoError(t, err)
			assert.Equal(t, outcome.Cognates, rows)

			assert.Empty(t, testutil.StagedFiles(t, cfg.StagingDir))
			assert.True(t, fake.Closed)
			assert.Equal(t, cfg.Threshold, fake.Clustered.Threshold)
			assert.Equal(t, "cogid", fake.Clustered.Ref)
			assert.Equal(t, "sca", fake.Aligned.Model)
		})
	}
}

func TestRunMethodControlsScorer(t *testing.T) {
	tests := []struct {
		method     engine.Method
		wantScorer bool
	}{
		{engine.MethodSCA, false},
		{engine.MethodLexStat, true},
		{engine.MethodEditDist, true},
		{engine.MethodTurchin, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			path := testutil.CreateWordlist(t, testutil.SampleForms())
			fake := testutil.NewFakeEngine(flat.KindFile)
			cfg := testConfig(t)
			cfg.Method = tt.method

			outcome, err := newTestOrchestrator(fake, nil).Run(context.Background(), testutil.LoadDataset(t, path), cfg)
			require.NoError(t, err)

			if !tt.wantScorer {
				assert.Nil(t, fake.Scorer)
				assert.Equal(t, []string{"load", "cluster", "align", "results"}, fake.Calls)
				assert.NotContains(t, outcome.States, StateScorerTrained)
				return
			}
			require.NotNil(t, fake.Scorer)
			assert.Equal(t, 10000, fake.Scorer.Runs)
			assert.Equal(t, [2]int{2, 1}, fake.Scorer.Ratio)
			assert.Equal(t, []string{"load", "scorer", "cluster", "align", "results"}, fake.Calls)
			assert.Equal(t, []State{StateIdle, StatePreflightCheck, StateScorerTrained, StateClustered, StateAligned, StateDone}, outcome.States)
			assert.Equal(t, tt.method, fake.Clustered.Method)
		})
	}
}

func TestRunAbortsOnExistingCognateTable(t *testing.T) {
	path := testutil.CreateWordlist(t, testutil.SampleForms())
	cfg := testConfig(t)

	_, err := newTestOrchestrator(testutil.NewFakeEngine(flat.KindFile), nil).Run(context.Background(), testutil.LoadDataset(t, path), cfg)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	before := testutil.Snapshot(t, dir)
	fake := testutil.NewFakeEngine(flat.KindFile)

	outcome, err := newTestOrchestrator(fake, nil).Run(context.Background(), testutil.LoadDataset(t, path), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCognateTableExists))
	assert.Equal(t, StateAborted, outcome.State())
	assert.Empty(t, fake.Calls)
	assert.Equal(t, before, testutil.Snapshot(t, dir))
	assert.Empty(t, testutil.StagedFiles(t, cfg.StagingDir))
}

func TestRunOverwrite(t *testing.T) {
	path := testutil.CreateWordlist(t, testutil.SampleForms())
	cfg := testConfig(t)

	_, err := newTestOrchestrator(testutil.NewFakeEngine(flat.KindFile), nil).Run(context.Background(), testutil.LoadDataset(t, path), cfg)
	require.NoError(t, err)

	cfg.Overwrite = true
	outcome, err := newTestOrchestrator(testutil.NewFakeEngine(flat.KindFile), nil).Run(context.Background(), testutil.LoadDataset(t, path), cfg)
	require.NoError(t, err)
	require.NotNil(t, outcome.Written)
	testutil.AssertFileExists(t, outcome.Written.Archived)
	testutil.AssertFileExists(t, outcome.Written.Path)
}

func TestRunMetadataFree(t *testing.T) {
	path := testutil.CreateFormsOnly(t, testutil.SampleForms())
	cfg := testConfig(t)

	outcome, err := newTestOrchestrator(testutil.NewFakeEngine(flat.KindMemory), nil).Run(context.Background(), testutil.LoadDataset(t, path), cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "cognates.csv"), outcome.Written.Path)

	_, err = newTestOrchestrator(testutil.NewFakeEngine(flat.KindMemory), nil).Run(context.Background(), testutil.LoadDataset(t, path), cfg)
	assert.ErrorIs(t, err, ErrCognateTableExists)
}

func TestRunEngineFailure(t *testing.T) {
	stages := []string{"load", "scorer", "cluster", "align", "results"}

	for _, stage := range stages {
		t.Run(stage, func(t *testing.T) {
			path := testutil.CreateWordlist(t, testutil.SampleForms())
			fake := testutil.NewFakeEngine(flat.KindFile)
			fake.Errors[stage] = errors.New("boom")
			cfg := testConfig(t)
			cfg.Method = engine.MethodLexStat

			outcome, err := newTestOrchestrator(fake, nil).Run(context.Background(), testutil.LoadDataset(t, path), cfg)
			require.Error(t, err)

			var stageErr *StageError
			require.True(t, errors.As(err, &stageErr))
			assert.Equal(t, stage, stageErr.Stage)
			assert.Equal(t, engine.MethodLexStat, stageErr.Method)
			assert.Equal(t, 2, stageErr.Rows)
			assert.ErrorIs(t, err, engine.ErrEngine)
			assert.Contains(t, err.Error(), "threshold=0")

			assert.NotEqual(t, StateDone, outcome.State())
			assert.True(t, fake.Closed)
			assert.Empty(t, testutil.StagedFiles(t, cfg.StagingDir))
			assert.False(t, testutil.LoadDataset(t, path).HasComponent(cldf.CognateTable))
		})
	}
}

func TestRunMalformedForm(t *testing.T) {
	forms := testutil.SampleForms()
	forms = append(forms, cldf.Form{ID: "D", LanguageID: "swe", ParameterID: "hand", Segments: []string{"h", "", "n"}})
	path := testutil.CreateWordlist(t, forms)
	fake := testutil.NewFakeEngine(flat.KindFile)
	cfg := testConfig(t)

	_, err := newTestOrchestrator(fake, nil).Run(context.Background(), testutil.LoadDataset(t, path), cfg)

	var malformed *flat.MalformedFormError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "D", malformed.FormID)
	assert.Empty(t, fake.Calls)
	assert.Empty(t, testutil.StagedFiles(t, cfg.StagingDir))
}

func TestRunNoForms(t *testing.T) {
	path := testutil.CreateWordlist(t, []cldf.Form{{ID: "B", LanguageID: "eng", ParameterID: "hand"}})
	fake := testutil.NewFakeEngine(flat.KindFile)

	_, err := newTestOrchestrator(fake, nil).Run(context.Background(), testutil.LoadDataset(t, path), testConfig(t))
	assert.ErrorIs(t, err, ErrNoForms)
	assert.Empty(t, fake.Calls)
}

func TestRunBadTokens(t *testing.T) {
	forms := []cldf.Form{
		{ID: "A", LanguageID: "deu", ParameterID: "hand", Segments: []string{"h", "a", "?", "?"}},
		{ID: "B", LanguageID: "eng", ParameterID: "hand", Segments: []string{"h", "a"}},
		{ID: "C", LanguageID: "nld", ParameterID: "hand", Segments: []string{"?", "a"}},
	}
	path := testutil.CreateWordlist(t, forms)
	cfg := testConfig(t)
	cfg.BadTokensLog = filepath.Join(t.TempDir(), "bad.json")
	classifier := &testutil.FakeClassifier{Classes: map[string]string{"h": "H", "a": "V"}}

	outcome, err := newTestOrchestrator(testutil.NewFakeEngine(flat.KindFile), classifier).Run(context.Background(), testutil.LoadDataset(t, path), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, classifier.Calls)

	want := map[string][]string{"?": {"A", "A", "C"}}
	assert.Equal(t, want, map[string][]string(outcome.BadTokens))

	raw, err := os.ReadFile(cfg.BadTokensLog)
	require.NoError(t, err)
	var written map[string][]string
	require.NoError(t, json.Unmarshal(raw, &written))
	assert.Equal(t, want, written)
}

func TestRunBadTokenScanFailureIsNotFatal(t *testing.T) {
	path := testutil.CreateWordlist(t, testutil.SampleForms())
	cfg := testConfig(t)
	cfg.BadTokensLog = filepath.Join(t.TempDir(), "bad.json")
	classifier := &testutil.FakeClassifier{Err: errors.New("lingpy not installed")}

	outcome, err := newTestOrchestrator(testutil.NewFakeEngine(flat.KindFile), classifier).Run(context.Background(), testutil.LoadDataset(t, path), cfg)
	require.NoError(t, err)
	assert.Equal(t, StateDone, outcome.State())
	assert.Nil(t, outcome.BadTokens)
	testutil.AssertFileNotExists(t, cfg.BadTokensLog)
}

func TestRunSQLiteExport(t *testing.T) {
	path := testutil.CreateWordlist(t, testutil.SampleForms())
	cfg := testConfig(t)
	cfg.SQLitePath = filepath.Join(t.TempDir(), "wordlist.sqlite")

	_, err := newTestOrchestrator(testutil.NewFakeEngine(flat.KindFile), nil).Run(context.Background(), testutil.LoadDataset(t, path), cfg)
	require.NoError(t, err)
	testutil.AssertFileExists(t, cfg.SQLitePath)
}

func TestStageErrorDefaultThreshold(t *testing.T) {
	err := &StageError{Stage: "cluster", Method: engine.MethodSCA, ClusterMethod: engine.ClusterMCL, Rows: 4, Err: errors.New("x")}
	assert.Equal(t, "cluster failed (method=sca cluster-method=mcl threshold=default rows=4): x", err.Error())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "scorer-trained", StateScorerTrained.String())
	assert.Equal(t, "unknown", State(42).String())
}
