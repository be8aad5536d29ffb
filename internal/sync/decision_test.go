package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	cases := []struct {
		name          string
		local, remote FileStatus
		localMtime    int64
		remoteMtime   int64
		want          SyncAction
	}{
		// single-side changes
		{"local created uploads", StatusCreated, StatusUnchanged, 100, 0, ActionUpload},
		{"local modified uploads", StatusModified, StatusUnchanged, 100, 0, ActionUpload},
		{"local deleted deletes remote", StatusDeleted, StatusUnchanged, 0, 0, ActionDeleteRemote},
		{"remote created downloads", StatusUnchanged, StatusCreated, 0, 100, ActionDownload},
		{"remote modified downloads", StatusUnchanged, StatusModified, 0, 100, ActionDownload},
		{"remote deleted deletes local", StatusUnchanged, StatusDeleted, 0, 0, ActionDeleteLocal},

		// nothing to do
		{"both unchanged", StatusUnchanged, StatusUnchanged, 0, 0, ActionDoNothing},
		{"both deleted", StatusDeleted, StatusDeleted, 0, 0, ActionDoNothing},

		// a change beats a deletion, no timestamp comparison
		{"local deleted remote modified downloads", StatusDeleted, StatusModified, 0, 200, ActionDownload},
		{"local deleted remote created downloads", StatusDeleted, StatusCreated, 0, 200, ActionDownload},
		{"remote deleted local modified uploads", StatusModified, StatusDeleted, 200, 0, ActionUpload},
		{"remote deleted local created uploads", StatusCreated, StatusDeleted, 200, 0, ActionUpload},

		// both changed: newest mtime wins, exact tie is a conflict
		{"both created local newer uploads", StatusCreated, StatusCreated, 300, 200, ActionUpload},
		{"both created remote newer downloads", StatusCreated, StatusCreated, 200, 300, ActionDownload},
		{"both created equal mtime conflicts", StatusCreated, StatusCreated, 250, 250, ActionConflict},
		{"both modified local newer uploads", StatusModified, StatusModified, 300, 200, ActionUpload},
		{"both modified remote newer downloads", StatusModified, StatusModified, 200, 300, ActionDownload},
		{"both modified equal mtime conflicts", StatusModified, StatusModified, 250, 250, ActionConflict},
		{"created vs modified local newer uploads", StatusCreated, StatusModified, 300, 200, ActionUpload},
		{"modified vs created remote newer downloads", StatusModified, StatusCreated, 200, 300, ActionDownload},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Decide(tc.local, tc.remote, tc.localMtime, tc.remoteMtime)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Equal(t, ActionConflict, Decide(StatusModified, StatusModified, 100, 100))
	}
}
