package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackpact/stackpact/internal/core/identity"
	"github.com/stackpact/stackpact/internal/core/inventory"
	"github.com/stackpact/stackpact/internal/core/policy"
	"github.com/stackpact/stackpact/internal/core/render"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeAdapter struct {
	calls int
	err   error
	block bool // wait for context cancellation instead of returning
}

func (f *fakeAdapter) Name() string { return "fake" }

func (f *fakeAdapter) Apply(ctx context.Context, _ identity.StackIdentity, _ []render.RenderedArtifact) error {
	f.calls++
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

type fakeGate struct {
	open bool
	err  error
}

func (f fakeGate) Open() (bool, error) { return f.open, f.err }

type fakeInventory struct {
	snapshot *inventory.Snapshot
	calls    int
}

func (f *fakeInventory) Snapshot(_ context.Context, _ string) (*inventory.Snapshot, error) {
	f.calls++
	return f.snapshot, nil
}

// =============================================================================
// Fixtures
// =============================================================================

const cleanTemplate = `services:
  web:
    image: nginx:1.25.3
    labels:
      pact.stackpact.io/stack: ${STACK}
      pact.stackpact.io/service: web
      traefik.http.routers.${STACK}-web.rule: Host(` + "`${APP_HOST}`" + `)
    environment:
      APP_HOST: ${APP_HOST}
volumes:
  ${STACK}_data: {}
`

func devRequest(wantsApply bool) Request {
	return Request{
		RawInputs: map[string]string{
			"STACK":        "acctdemo",
			"LOCAL_DOMAIN": "localtest.me",
		},
		Environment: identity.EnvDev,
		Templates: []render.ArtifactTemplate{
			{Name: "compose.yaml", Content: cleanTemplate},
		},
		WantsApply: wantsApply,
	}
}

func prodRequest(wantsApply bool) Request {
	req := devRequest(wantsApply)
	req.RawInputs = map[string]string{
		"STACK":       "acctdemo",
		"BASE_DOMAIN": "localtest.me",
	}
	req.Environment = identity.EnvProd
	return req
}

// =============================================================================
// Run Tests
// =============================================================================

func TestRun_ValidateOnlyClean(t *testing.T) {
	adapter := &fakeAdapter{}
	runner := &Runner{Adapter: adapter}

	result, err := runner.Run(context.Background(), devRequest(false))
	require.NoError(t, err)
	assert.Equal(t, StateDone, result.State)
	assert.False(t, result.Applied)
	assert.Empty(t, result.Violations)
	require.Len(t, result.Rendered, 1)
	assert.Contains(t, result.Rendered[0].Content, "acctdemo.localtest.me")
	assert.Equal(t, 0, adapter.calls)
}

func TestRun_RenderIdempotent(t *testing.T) {
	runner := &Runner{}
	req := devRequest(false)

	first, err := runner.Run(context.Background(), req)
	require.NoError(t, err)
	second, err := runner.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.Rendered, second.Rendered)
}

func TestRun_InvalidIdentity(t *testing.T) {
	runner := &Runner{}
	req := devRequest(false)
	req.RawInputs["STACK"] = "Not A Stack"

	result, err := runner.Run(context.Background(), req)
	assert.ErrorIs(t, err, identity.ErrInvalidIdentity)
	assert.Equal(t, StateFailed, result.State)
}

func TestRun_UnresolvedPlaceholder(t *testing.T) {
	runner := &Runner{}
	req := devRequest(false)
	req.Templates = append(req.Templates, render.ArtifactTemplate{
		Name:    "extra.yaml",
		Content: "value: ${NEVER_BOUND}",
	})

	result, err := runner.Run(context.Background(), req)
	assert.ErrorIs(t, err, render.ErrUnresolvedPlaceholder)
	assert.Equal(t, StateFailed, result.State)
	assert.Empty(t, result.Rendered)
}

func TestRun_PolicyViolationsFail(t *testing.T) {
	adapter := &fakeAdapter{}
	runner := &Runner{Adapter: adapter}

	req := devRequest(true)
	req.Templates = []render.ArtifactTemplate{{
		Name:    "compose.yaml",
		Content: "services:\n  web:\n    image: nginx\n",
	}}

	result, err := runner.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, result.State)
	assert.NotEmpty(t, result.Violations)
	assert.Equal(t, 0, adapter.calls, "nothing may be applied after violations")
}

func TestRun_ProdGateClosedBlocks(t *testing.T) {
	adapter := &fakeAdapter{}
	runner := &Runner{Adapter: adapter, Gate: fakeGate{open: false}}

	result, err := runner.Run(context.Background(), prodRequest(true))
	require.NoError(t, err)
	assert.Equal(t, StateBlocked, result.State)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, policy.ClassProductionGateClosed, result.Violations[0].Class)
	assert.Equal(t, 0, adapter.calls, "blocked runs never reach apply")
}

func TestRun_ProdGateOpenApplies(t *testing.T) {
	adapter := &fakeAdapter{}
	runner := &Runner{Adapter: adapter, Gate: fakeGate{open: true}}

	result, err := runner.Run(context.Background(), prodRequest(true))
	require.NoError(t, err)
	assert.Equal(t, StateDone, result.State)
	assert.True(t, result.Applied)
	assert.Equal(t, 1, adapter.calls)
}

func TestRun_ProdValidateOnlyGateClosedPasses(t *testing.T) {
	// Gate only binds apply runs; a validate-only prod run is not blocked.
	runner := &Runner{Gate: fakeGate{open: false}}

	result, err := runner.Run(context.Background(), prodRequest(false))
	require.NoError(t, err)
	assert.Equal(t, StateDone, result.State)
}

func TestRun_ViolationsTakePrecedenceOverBlocked(t *testing.T) {
	runner := &Runner{Gate: fakeGate{open: false}}

	req := prodRequest(true)
	req.Templates = []render.ArtifactTemplate{{
		Name:    "compose.yaml",
		Content: "services:\n  web:\n    image: nginx\n",
	}}

	result, err := runner.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, result.State)

	found := make(map[string]bool)
	for _, v := range result.Violations {
		found[v.Class] = true
	}
	assert.True(t, found[policy.ClassFloatingImageTag])
	assert.True(t, found[policy.ClassProductionGateClosed])
}

func TestRun_InventoryFetchedOnlyForApply(t *testing.T) {
	inv := &fakeInventory{snapshot: &inventory.Snapshot{}}
	runner := &Runner{Inventory: inv, Adapter: &fakeAdapter{}}

	_, err := runner.Run(context.Background(), devRequest(false))
	require.NoError(t, err)
	assert.Equal(t, 0, inv.calls)

	_, err = runner.Run(context.Background(), devRequest(true))
	require.NoError(t, err)
	assert.Equal(t, 1, inv.calls)
}

func TestRun_AdapterErrorSurfacedVerbatim(t *testing.T) {
	applyErr := errors.New("network create failed")
	runner := &Runner{Adapter: &fakeAdapter{err: applyErr}}

	result, err := runner.Run(context.Background(), devRequest(true))
	assert.ErrorIs(t, err, applyErr)
	assert.Equal(t, StateFailed, result.State)
	assert.False(t, result.Applied)

	var wrapped *ApplyError
	require.ErrorAs(t, err, &wrapped)
	assert.Equal(t, "fake", wrapped.Adapter)
}

func TestRun_ApplyTimeout(t *testing.T) {
	runner := &Runner{Adapter: &fakeAdapter{block: true}}

	req := devRequest(true)
	req.ApplyTimeout = 10 * time.Millisecond

	result, err := runner.Run(context.Background(), req)
	assert.ErrorIs(t, err, ErrApplyTimedOut)
	assert.Equal(t, StateFailed, result.State)
}

func TestRun_ApplyWithoutAdapter(t *testing.T) {
	runner := &Runner{}

	result, err := runner.Run(context.Background(), devRequest(true))
	assert.ErrorIs(t, err, ErrNoAdapter)
	assert.Equal(t, StateFailed, result.State)
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestComposeShaped(t *testing.T) {
	assert.True(t, composeShaped("compose.yaml"))
	assert.True(t, composeShaped("stack.yml"))
	assert.False(t, composeShaped("Caddyfile"))
	assert.False(t, composeShaped("env.txt"))
}
