package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/selfassess/internal/store"
)

func newSQLiteBucket(t *testing.T) *SQLiteBucket {
	t.Helper()
	s, err := store.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewSQLiteBucket(s.ObjectRepo())
}

func TestAllowed(t *testing.T) {
	alice := Identity{ID: "alice"}
	bob := Identity{ID: "bob"}
	admin := Identity{ID: "root", Groups: []string{GroupAdmins}}
	assessor := Identity{ID: "carol", Groups: []string{GroupAssessors}}
	anon := Identity{}

	tests := []struct {
		name   string
		id     Identity
		action Action
		path   string
		want   bool
	}{
		{"owner reads own", alice, ActionRead, "assessments/alice/a1/answers.json", true},
		{"owner writes own", alice, ActionWrite, "assessments/alice/a1/answers.json", true},
		{"owner deletes own", alice, ActionDelete, "assessments/alice/a1/answers.json", true},
		{"other user denied", bob, ActionRead, "assessments/alice/a1/answers.json", false},
		{"admin reads any", admin, ActionRead, "assessments/alice/a1/answers.json", true},
		{"assessor deletes any", assessor, ActionDelete, "assessments/alice/a1/answers.json", true},
		{"anonymous denied", anon, ActionRead, "assessments//a1", false},
		{"owner lists own prefix", alice, ActionRead, "assessments/alice/", true},
		{"owner cannot list all", alice, ActionRead, "assessments/", false},
		{"admin writes questionnaire", admin, ActionWrite, "questionnaire/cmmc_l1.json", true},
		{"assessor reads questionnaire", assessor, ActionRead, "questionnaire/cmmc_l1.json", true},
		{"assessor cannot write questionnaire", assessor, ActionWrite, "questionnaire/cmmc_l1.json", false},
		{"user cannot read questionnaire", alice, ActionRead, "questionnaire/cmmc_l1.json", false},
		{"unknown prefix denied", admin, ActionRead, "secrets/key", false},
		{"traversal denied", alice, ActionRead, "assessments/alice/../bob/a1", false},
		{"absolute denied", admin, ActionRead, "/assessments/alice/a1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.id, tt.action, tt.path))
		})
	}
}

func TestSQLiteBucket_CRUD(t *testing.T) {
	ctx := context.Background()
	b := newSQLiteBucket(t)

	require.NoError(t, b.Put(ctx, "assessments/alice/a1/answers.json", "application/json", []byte(`{}`)))
	require.NoError(t, b.Put(ctx, "assessments/alice/a2/answers.json", "application/json", []byte(`{"x":1}`)))

	obj, err := b.Get(ctx, "assessments/alice/a1/answers.json")
	require.NoError(t, err)
	assert.Equal(t, "application/json", obj.ContentType)
	assert.Equal(t, `{}`, string(obj.Data))

	infos, err := b.List(ctx, "assessments/alice/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, int64(7), infos[1].Size)

	require.NoError(t, b.Delete(ctx, "assessments/alice/a1/answers.json"))
	_, err = b.Get(ctx, "assessments/alice/a1/answers.json")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, b.Delete(ctx, "assessments/alice/a1/answers.json"), ErrNotFound)
}

func TestGuardedBucket(t *testing.T) {
	ctx := context.Background()
	raw := newSQLiteBucket(t)
	require.NoError(t, raw.Put(ctx, "assessments/alice/a1/answers.json", "application/json", []byte(`{}`)))

	alice := WithAccess(raw, Identity{ID: "alice"})
	_, err := alice.Get(ctx, "assessments/alice/a1/answers.json")
	require.NoError(t, err)

	bob := WithAccess(raw, Identity{ID: "bob"})
	_, err = bob.Get(ctx, "assessments/alice/a1/answers.json")
	var fe *ForbiddenError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ActionRead, fe.Action)

	assert.ErrorAs(t, bob.Put(ctx, "assessments/alice/a1/answers.json", "application/json", nil), &fe)
	assert.ErrorAs(t, bob.Delete(ctx, "assessments/alice/a1/answers.json"), &fe)
	_, err = bob.List(ctx, "assessments/alice/")
	assert.ErrorAs(t, err, &fe)

	assessor := WithAccess(raw, Identity{ID: "carol", Groups: []string{GroupAssessors}})
	assert.ErrorAs(t, assessor.Put(ctx, "questionnaire/custom.json", "application/json", []byte(`[]`)), &fe)

	admin := WithAccess(raw, Identity{ID: "root", Groups: []string{GroupAdmins}})
	require.NoError(t, admin.Put(ctx, "questionnaire/custom.json", "application/json", []byte(`[]`)))
	_, err = assessor.Get(ctx, "questionnaire/custom.json")
	assert.NoError(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.NoError(t, Config{Backend: BackendSQLite}.Validate())
	assert.Error(t, Config{Backend: BackendGCS}.Validate())
	assert.NoError(t, Config{Backend: BackendGCS, Bucket: "assessments"}.Validate())
	assert.Error(t, Config{Backend: "s3"}.Validate())
}

func TestForbiddenError_Message(t *testing.T) {
	err := &ForbiddenError{Action: ActionWrite, Path: "questionnaire/x"}
	assert.Equal(t, `anonymous may not write "questionnaire/x"`, err.Error())
}
