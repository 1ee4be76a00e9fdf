package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidgate/internal/classify"
	"tidgate/internal/remoteapi"
	"tidgate/internal/testid"
	"tidgate/internal/verify"
)

type fakeLocal struct {
	res *verify.Result
	err error
}

func (f *fakeLocal) Verify(ctx context.Context, route string) (*verify.Result, error) {
	return f.res, f.err
}

type fakeRemote struct {
	res *remoteapi.VerifyResponse
	err error
}

func (f *fakeRemote) Verify(ctx context.Context, route string) (*remoteapi.VerifyResponse, error) {
	return f.res, f.err
}

func localResult() *verify.Result {
	return &verify.Result{
		Route:     "/login",
		Timestamp: time.Now().UTC(),
		Present:   []testid.Key{"loginHeader", "authSubmitBtn"},
		Hidden:    []testid.Key{"authEmailInput"},
		Missing:   []testid.Key{"backToHome"},
	}
}

func TestReconcile_BothSourcesAgree(t *testing.T) {
	local := &fakeLocal{res: localResult()}
	remote := &fakeRemote{res: &remoteapi.VerifyResponse{
		Route:   "/login",
		Present: []testid.Key{"loginHeader", "authSubmitBtn"},
		Hidden:  []testid.Key{"authEmailInput"},
		Missing: []testid.Key{"backToHome"},
	}}

	res, err := New(local, remote, nil).Reconcile(context.Background(), "/login")
	require.NoError(t, err)
	assert.Empty(t, res.RemoteErr)
	assert.Empty(t, res.Disagreements)
	assert.Equal(t, []testid.Key{"backToHome"}, res.Missing())
}

// A remote failure still yields a usable combined result identical to what
// local alone produces, with the error surfaced, never dropped.
func TestReconcile_RemoteFailureIsNonFatal(t *testing.T) {
	local := &fakeLocal{res: localResult()}
	remote := &fakeRemote{err: errors.New("connection refused")}

	res, err := New(local, remote, nil).Reconcile(context.Background(), "/login")
	require.NoError(t, err)
	assert.Contains(t, res.RemoteErr, "connection refused")
	assert.Nil(t, res.Remote)
	assert.Equal(t, local.res.Present, res.Present())
	assert.Equal(t, local.res.Hidden, res.Hidden())
	assert.Equal(t, local.res.Missing, res.Missing())
}

func TestReconcile_LocalFailureIsFatal(t *testing.T) {
	local := &fakeLocal{err: errors.New("navigation timeout")}
	_, err := New(local, &fakeRemote{}, nil).Reconcile(context.Background(), "/login")
	require.Error(t, err)
}

func TestReconcile_NoRemoteConfigured(t *testing.T) {
	res, err := New(&fakeLocal{res: localResult()}, nil, nil).Reconcile(context.Background(), "/login")
	require.NoError(t, err)
	assert.Empty(t, res.RemoteErr)
	assert.Nil(t, res.Remote)
}

func TestReconcile_DisagreementsSurfaced(t *testing.T) {
	local := &fakeLocal{res: localResult()}
	remote := &fakeRemote{res: &remoteapi.VerifyResponse{
		Route:   "/login",
		Present: []testid.Key{"loginHeader", "authEmailInput", "backToHome"},
		Missing: []testid.Key{"authSubmitBtn"},
	}}

	res, err := New(local, remote, nil).Reconcile(context.Background(), "/login")
	require.NoError(t, err)

	// Local classification stays authoritative.
	assert.Equal(t, []testid.Key{"backToHome"}, res.Missing())
	want := []Disagreement{
		{Key: "authEmailInput", Local: classify.Hidden, Remote: classify.Present},
		{Key: "authSubmitBtn", Local: classify.Present, Remote: classify.Missing},
		{Key: "backToHome", Local: classify.Missing, Remote: classify.Present},
	}
	if diff := cmp.Diff(want, res.Disagreements); diff != "" {
		t.Errorf("disagreements mismatch (-want +got):\n%s", diff)
	}
}

// Coverage gaps between the two sources are disagreements too: a key only one
// side classified must not vanish from the diff.
func TestReconcile_CoverageGapsSurfaced(t *testing.T) {
	local := &fakeLocal{res: localResult()}
	remote := &fakeRemote{res: &remoteapi.VerifyResponse{
		Route:   "/login",
		Present: []testid.Key{"loginHeader", "authSubmitBtn", "leagueJoinBtn"},
		Hidden:  []testid.Key{"authEmailInput"},
	}}

	res, err := New(local, remote, nil).Reconcile(context.Background(), "/login")
	require.NoError(t, err)

	want := []Disagreement{
		{Key: "backToHome", Local: classify.Missing, Remote: Unreported},
		{Key: "leagueJoinBtn", Local: Unreported, Remote: classify.Present},
	}
	if diff := cmp.Diff(want, res.Disagreements); diff != "" {
		t.Errorf("disagreements mismatch (-want +got):\n%s", diff)
	}
}
