package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dim0x69/kisss3/internal/blob"
	"github.com/dim0x69/kisss3/internal/vault"
)

func localFile(path string, mtime int64) *vault.FileInfo {
	return &vault.FileInfo{Path: path, Size: 1, Mtime: mtime}
}

func remoteObj(path string, mtime int64) *blob.ObjectInfo {
	return &blob.ObjectInfo{Path: path, Mtime: mtime, RemoteID: "r:" + path}
}

func TestBuildPlanFreshPush(t *testing.T) {
	local := map[string]*vault.FileInfo{"a.md": localFile("a.md", 1000)}

	plan := BuildPlan(local, nil, nil)

	require.Len(t, plan.Decisions, 1)
	require.Len(t, plan.Uploads, 1)
	d := plan.Uploads[0]
	assert.Equal(t, "a.md", d.Path)
	assert.Equal(t, StatusCreated, d.Local)
	assert.Equal(t, StatusUnchanged, d.Remote)
	assert.Equal(t, ActionUpload, d.Action)
}

func TestBuildPlanFreshPull(t *testing.T) {
	remote := map[string]*blob.ObjectInfo{"a.md": remoteObj("a.md", 1000)}

	plan := BuildPlan(nil, remote, nil)

	require.Len(t, plan.Downloads, 1)
	d := plan.Downloads[0]
	assert.Equal(t, StatusUnchanged, d.Local)
	assert.Equal(t, StatusCreated, d.Remote)
	assert.Equal(t, "r:a.md", d.RemoteObj.RemoteID)
}

func TestBuildPlanGoneFromBothSidesIsCleanup(t *testing.T) {
	baseline := make(Baseline)
	baseline.SetSynced("a.md", 100, 100)

	plan := BuildPlan(nil, nil, baseline)

	require.Len(t, plan.Decisions, 1)
	assert.Equal(t, ActionDoNothing, plan.Decisions[0].Action)
	assert.Equal(t, []string{"a.md"}, plan.Cleanups)
	assert.Empty(t, plan.Unchanged)
	assert.True(t, plan.HasChanges(), "cleanup still mutates the baseline")
}

func TestBuildPlanModificationBeatsDeletion(t *testing.T) {
	baseline := make(Baseline)
	baseline.SetSynced("a.md", 100, 100)
	remote := map[string]*blob.ObjectInfo{"a.md": remoteObj("a.md", 200)}

	plan := BuildPlan(nil, remote, baseline)

	require.Len(t, plan.Downloads, 1)
	assert.Equal(t, StatusDeleted, plan.Downloads[0].Local)
	assert.Equal(t, StatusModified, plan.Downloads[0].Remote)
	assert.Empty(t, plan.LocalDeletes)
}

func TestBuildPlanConflictOnEqualMtimes(t *testing.T) {
	baseline := make(Baseline)
	baseline.SetSynced("a.md", 100, 100)
	local := map[string]*vault.FileInfo{"a.md": localFile("a.md", 500)}
	remote := map[string]*blob.ObjectInfo{"a.md": remoteObj("a.md", 500)}

	plan := BuildPlan(local, remote, baseline)

	require.Len(t, plan.Conflicts, 1)
	assert.Equal(t, StatusModified, plan.Conflicts[0].Local)
	assert.Equal(t, StatusModified, plan.Conflicts[0].Remote)
}

func TestBuildPlanUnchangedEverywhere(t *testing.T) {
	baseline := make(Baseline)
	baseline.SetSynced("a.md", 100, 200)
	local := map[string]*vault.FileInfo{"a.md": localFile("a.md", 100)}
	remote := map[string]*blob.ObjectInfo{"a.md": remoteObj("a.md", 200)}

	plan := BuildPlan(local, remote, baseline)

	assert.False(t, plan.HasChanges())
	assert.Equal(t, []string{"a.md"}, plan.Unchanged)
}

func TestBuildPlanIsDeterministicallyOrdered(t *testing.T) {
	local := map[string]*vault.FileInfo{
		"c.md": localFile("c.md", 1),
		"a.md": localFile("a.md", 1),
		"b.md": localFile("b.md", 1),
	}

	for i := 0; i < 5; i++ {
		plan := BuildPlan(local, nil, nil)
		require.Len(t, plan.Decisions, 3)
		assert.Equal(t, "a.md", plan.Decisions[0].Path)
		assert.Equal(t, "b.md", plan.Decisions[1].Path)
		assert.Equal(t, "c.md", plan.Decisions[2].Path)
	}
}

func TestBuildPlanMixedBatch(t *testing.T) {
	baseline := make(Baseline)
	baseline.SetSynced("keep.md", 100, 100)
	baseline.SetSynced("del-local.md", 100, 100)
	baseline.SetSynced("del-remote.md", 100, 100)

	local := map[string]*vault.FileInfo{
		"keep.md": localFile("keep.md", 100),
		"new.md":  localFile("new.md", 300),
		// del-local.md gone locally
		"del-remote.md": localFile("del-remote.md", 100),
	}
	remote := map[string]*blob.ObjectInfo{
		"keep.md":      remoteObj("keep.md", 100),
		"del-local.md": remoteObj("del-local.md", 100),
		// del-remote.md gone remotely
		"incoming.md": remoteObj("incoming.md", 400),
	}

	plan := BuildPlan(local, remote, baseline)

	assert.Len(t, plan.Uploads, 1)        // new.md
	assert.Len(t, plan.Downloads, 1)      // incoming.md
	assert.Len(t, plan.RemoteDeletes, 1)  // del-local.md
	assert.Len(t, plan.LocalDeletes, 1)   // del-remote.md
	assert.Equal(t, []string{"keep.md"}, plan.Unchanged)
}
