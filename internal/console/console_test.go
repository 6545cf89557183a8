package console

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hbnb/internal/storage"
	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// testEnv bundles a console, its output buffer and its store.
type testEnv struct {
	console *Console
	out     *bytes.Buffer
	store   *storage.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.Open(types.Config{Backend: types.BackendJSON, DataDir: t.TempDir()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	out := &bytes.Buffer{}
	return &testEnv{console: New(store, out, nil), out: out, store: store}
}

// run executes line and returns its trimmed output.
func (e *testEnv) run(t *testing.T, line string) string {
	t.Helper()
	e.out.Reset()
	stop := e.console.Onecmd(line)
	assert.False(t, stop, "%q must not stop the loop", line)
	return strings.TrimSpace(e.out.String())
}

// create makes a record of class through the console and returns its id.
func (e *testEnv) create(t *testing.T, class string) string {
	t.Helper()
	id := e.run(t, "create "+class)
	require.NotEmpty(t, id)
	return id
}

func TestOnecmd_EmptyLine(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, "", env.run(t, ""))
	assert.Equal(t, "", env.run(t, "   \t"))
}

func TestOnecmd_Quit(t *testing.T) {
	env := newTestEnv(t)
	for _, line := range []string{"quit", "EOF"} {
		env.out.Reset()
		assert.True(t, env.console.Onecmd(line), line)
		assert.Empty(t, env.out.String())
	}
}

func TestOnecmd_UnknownSyntax(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, "*** Unknown syntax: foo bar", env.run(t, "foo bar"))
	assert.Equal(t, `*** Unknown syntax: create "User`, env.run(t, `create "User`))
}

func TestCreate(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, string(ErrClassMissing), env.run(t, "create"))
	assert.Equal(t, string(ErrClassUnknown), env.run(t, "create BadClass"))

	for _, class := range types.ClassNames() {
		id := env.create(t, class)
		_, err := env.store.Get(class, id)
		assert.NoError(t, err, "%s.%s stored", class, id)
	}
}

func TestLookupErrors(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, types.ClassUser)

	tests := []struct {
		line string
		want string
	}{
		{"show", string(ErrClassMissing)},
		{"show BadClass", string(ErrClassUnknown)},
		{"show BadClass 123", string(ErrClassUnknown)},
		{"show User", string(ErrIDMissing)},
		{"show User BadUser", string(ErrNoInstance)},
		{"show Place " + id, string(ErrNoInstance)},
		{"destroy", string(ErrClassMissing)},
		{"destroy BadClass", string(ErrClassUnknown)},
		{"destroy User", string(ErrIDMissing)},
		{"destroy User BadUser", string(ErrNoInstance)},
		{"update", string(ErrClassMissing)},
		{"update BadClass", string(ErrClassUnknown)},
		{"update User", string(ErrIDMissing)},
		{"update User BadUser", string(ErrNoInstance)},
		{"update User " + id, string(ErrAttrMissing)},
		{"update User " + id + " first_name", string(ErrValueMissing)},
		{"count", string(ErrClassMissing)},
		{"count BadClass", string(ErrClassUnknown)},
		{"all BadClass", string(ErrClassUnknown)},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, env.run(t, tt.line))
		})
	}
}

func TestShow(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, types.ClassUser)

	r, err := env.store.Get(types.ClassUser, id)
	require.NoError(t, err)
	assert.Equal(t, r.String(), env.run(t, "show User "+id))
}

func TestShow_JSON(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, types.ClassState)
	env.console.JSON = true

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(env.run(t, "show State "+id)), &doc))
	assert.Equal(t, "State", doc[types.AttrClass])
	assert.Equal(t, id, doc[types.AttrID])
}

func TestDestroy(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, types.ClassCity)

	assert.Equal(t, "", env.run(t, "destroy City "+id))
	assert.Equal(t, string(ErrNoInstance), env.run(t, "show City "+id))
	assert.Empty(t, env.store.All())
}

func TestAll(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, "", env.run(t, "all"))

	userID := env.create(t, types.ClassUser)
	placeID := env.create(t, types.ClassPlace)

	lines := strings.Split(env.run(t, "all"), "\n")
	assert.Len(t, lines, 2)

	users := env.run(t, "all User")
	assert.Contains(t, users, userID)
	assert.NotContains(t, users, placeID)
	assert.True(t, strings.HasPrefix(users, "[User] ("+userID+")"))
}

func TestAll_JSON(t *testing.T) {
	env := newTestEnv(t)
	env.create(t, types.ClassAmenity)
	env.create(t, types.ClassAmenity)
	env.console.JSON = true

	var docs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(env.run(t, "all Amenity")), &docs))
	assert.Len(t, docs, 2)

	require.NoError(t, json.Unmarshal([]byte(env.run(t, "all Review")), &docs))
	assert.Empty(t, docs)
}

func TestCount(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, "0", env.run(t, "count Review"))
	env.create(t, types.ClassReview)
	env.create(t, types.ClassReview)
	env.create(t, types.ClassUser)
	assert.Equal(t, "2", env.run(t, "count Review"))
}

func TestUpdate(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, types.ClassUser)

	assert.Equal(t, "", env.run(t, `update User `+id+` first_name "Betty Holberton"`))
	assert.Equal(t, "", env.run(t, `update User `+id+` age 89 extra ignored`))

	require.NoError(t, env.store.Reload())
	r, err := env.store.Get(types.ClassUser, id)
	require.NoError(t, err)
	assert.Equal(t, "Betty Holberton", r.Attributes["first_name"])
	assert.Equal(t, "89", r.Attributes["age"], "positional values are strings")
}

func TestUpdate_ReservedAttributesIgnored(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, types.ClassUser)
	before, err := env.store.Get(types.ClassUser, id)
	require.NoError(t, err)
	created := before.CreatedAt

	for _, attr := range []string{"id", "created_at", "updated_at", "__class__"} {
		assert.Equal(t, "", env.run(t, "update User "+id+" "+attr+" hacked"))
	}

	r, err := env.store.Get(types.ClassUser, id)
	require.NoError(t, err)
	assert.Equal(t, id, r.ID)
	assert.True(t, created.Equal(r.CreatedAt))
	assert.Empty(t, r.Attributes)
}

func TestHelp(t *testing.T) {
	env := newTestEnv(t)

	listing := env.run(t, "help")
	assert.Contains(t, listing, helpHeader)
	assert.Contains(t, listing, "EOF  all  count  create  destroy  help  quit  show  update")

	for _, name := range env.console.Commands() {
		text, ok := env.console.Help(name)
		require.True(t, ok)
		assert.Equal(t, text, env.run(t, "help "+name))
		assert.GreaterOrEqual(t, len(text), 10, "help for %s is too short", name)
	}

	assert.Equal(t, "*** No help on nope", env.run(t, "help nope"))
}

func TestExecute_ReturnsMessages(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, ErrClassMissing, env.console.Execute("create", nil))
	assert.Equal(t, ErrQuit, env.console.Execute("quit", nil))
	assert.Equal(t, Message("*** Unknown syntax: frobnicate User"), env.console.Execute("frobnicate", []string{"User"}))
	assert.Empty(t, env.out.String(), "Execute prints nothing for errors")
}

func TestLoop(t *testing.T) {
	env := newTestEnv(t)
	input := "create User\n\ncount User\nquit\ncreate User\n"

	require.NoError(t, env.console.Loop(NewLineReader(strings.NewReader(input))))

	lines := strings.Split(strings.TrimSpace(env.out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1", lines[1])
	assert.Len(t, env.store.ByClass(types.ClassUser), 1, "lines after quit are not run")
}

func TestLoop_EndOfInput(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.console.Loop(NewLineReader(strings.NewReader("create State"))))
	assert.Len(t, env.store.ByClass(types.ClassState), 1)
}
