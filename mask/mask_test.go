package mask_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/filemanager/mask"
)

type upload struct {
	Name    string    `json:"name"`
	Body    []byte    `json:"body"`
	Secret  string    `json:"secret" mask:"true"`
	Empty   string    `json:"empty" mask:"true"`
	Hidden  string    `json:"-"`
	At      time.Time `json:"at"`
	Nested  *inner    `json:"nested"`
	NilPtr  *inner    `json:"nil_ptr"`
	private string
}

type inner struct {
	Key   string `yaml:"key"`
	Count int
}

func TestStructToOrdMap(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	om := mask.StructToOrdMap(&upload{
		Name:    "a.txt",
		Body:    []byte("hello"),
		Secret:  "s3cr3t",
		Hidden:  "x",
		At:      at,
		Nested:  &inner{Key: "k", Count: 2},
		private: "p",
	})
	require.NotNil(t, om)

	var keys []string
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"name", "body", "secret", "empty", "at", "nested.key", "nested.Count", "nil_ptr"}, keys)

	get := func(k string) any {
		v, _ := om.Get(k)
		return v
	}
	assert.Equal(t, "a.txt", get("name"))
	assert.Equal(t, "<5 bytes>", get("body"))
	assert.Equal(t, mask.Masked, get("secret"))
	assert.Equal(t, "", get("empty"))
	assert.Equal(t, at, get("at"))
	assert.Equal(t, "k", get("nested.key"))
	assert.Equal(t, 2, get("nested.Count"))
	assert.Nil(t, get("nil_ptr"))
}

func TestStructToOrdMap_NonStruct(t *testing.T) {
	assert.Nil(t, mask.StructToOrdMap(nil))

	om := mask.StructToOrdMap([]string{"a", "b"})
	v, ok := om.Get("")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, v)
}
