package harness

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hans/internal/backend"
	"hans/internal/fixtures"
	"hans/internal/sim"
)

func runIntegration(t *testing.T, rig *testRig, cfg IntegrationTestConfig) TestResult {
	t.Helper()
	result, err := rig.orch.ExecuteTestSuite(context.Background(), SuiteConfig{IntegrationTests: []IntegrationTestConfig{cfg}})
	require.NoError(t, err)
	require.Len(t, result.DetailedResults, 1)
	return result.DetailedResults[0]
}

func TestIntegration_DataFlowConcurrentEditing(t *testing.T) {
	rig := newTestRig(t, sim.NewSequenceRand(0.99))

	r := runIntegration(t, rig, IntegrationTestConfig{Name: "edit", Category: FlowDataFlow, Scenario: fixtures.ScenarioConcurrentEditing})
	require.Equal(t, StatusPassed, r.Status, r.Error)

	d := r.Details.(*IntegrationDetails)
	assert.Equal(t, fixtures.ScenarioConcurrentEditing, d.Scenario)
	assert.Equal(t, 4, d.Operations)
	assert.Zero(t, d.DeniedSkipped)
	assert.Positive(t, d.DocumentsSeeded)
	assert.Equal(t, d.DocumentsSeeded, rig.store.Len())
}

func TestIntegration_DataFlowSkipsDeniedOperations(t *testing.T) {
	rig := newTestRig(t, sim.NewSequenceRand(0.99))

	r := runIntegration(t, rig, IntegrationTestConfig{Name: "perms", Category: FlowDataFlow, Scenario: fixtures.ScenarioPermissionTesting})
	require.Equal(t, StatusPassed, r.Status, r.Error)

	d := r.Details.(*IntegrationDetails)
	assert.Equal(t, 3, d.Operations)
	assert.Equal(t, 2, d.DeniedSkipped)
}

func TestIntegration_UnknownScenarioFallsBack(t *testing.T) {
	rig := newTestRig(t, sim.NewSequenceRand(0.99))

	r := runIntegration(t, rig, IntegrationTestConfig{Name: "nav", Category: FlowNavigation, Scenario: "chaos_monkey"})
	require.Equal(t, StatusPassed, r.Status, r.Error)

	d := r.Details.(*IntegrationDetails)
	assert.Equal(t, fixtures.ScenarioConcurrentEditing, d.Scenario)
	assert.Equal(t, []string{"Home", "Group", "Detail"}, d.Screens)
	assert.Equal(t, 1, d.Operations)
}

func TestIntegration_FeatureFlowAddsDocument(t *testing.T) {
	rig := newTestRig(t, sim.NewSequenceRand(0.99))

	r := runIntegration(t, rig, IntegrationTestConfig{Name: "create task", Category: FlowFeatureIntegration})
	require.Equal(t, StatusPassed, r.Status, r.Error)

	d := r.Details.(*IntegrationDetails)
	assert.Equal(t, 2, d.Operations)
	assert.Equal(t, d.DocumentsSeeded+1, rig.store.Len())
}

func TestIntegration_RealtimeSyncDelivers(t *testing.T) {
	rig := newTestRig(t, sim.NewSequenceRand(0.99))

	r := runIntegration(t, rig, IntegrationTestConfig{Name: "sync", Category: FlowRealtimeSync, Scenario: fixtures.ScenarioRealtimeSync})
	require.Equal(t, StatusPassed, r.Status, r.Error)

	d := r.Details.(*IntegrationDetails)
	assert.GreaterOrEqual(t, d.Notifications, 1)
	assert.Eventually(t, func() bool {
		for _, p := range rig.store.Paths() {
			if rig.store.ListenerCount(p) > 0 {
				return false
			}
		}
		return true
	}, time.Second, 10*time.Millisecond, "listener not removed")
}

func TestIntegration_RealtimeSyncTimesOutWithoutDelivery(t *testing.T) {
	rig := newTestRig(t, sim.NewSequenceRand(0.99), WithSyncWait(20*time.Millisecond))
	rig.orch.deps.Store = silentStore{rig.store}

	r := runIntegration(t, rig, IntegrationTestConfig{Name: "sync", Category: FlowRealtimeSync})
	assert.Equal(t, StatusFailed, r.Status)
	assert.Contains(t, r.Error, "no realtime notification")
}

func TestIntegration_OfflineBackendFails(t *testing.T) {
	rig := newTestRig(t, sim.NewSequenceRand(0.99))
	rig.store.SimulateOffline()

	r := runIntegration(t, rig, IntegrationTestConfig{Name: "edit", Category: FlowDataFlow})
	assert.Equal(t, StatusFailed, r.Status)
	assert.Contains(t, r.Error, backend.ErrOffline.Error())
}

// silentStore drops listener registrations.
type silentStore struct {
	*backend.Backend
}

func (silentStore) OnSnapshot(string, backend.SnapshotFunc) func() {
	return func() {}
}
