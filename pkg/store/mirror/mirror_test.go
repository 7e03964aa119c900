package mirror

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video_promo_shop/pkg/store/filestore"
)

func TestMirrorRoundTrip(t *testing.T) {
	m := New()

	m.Set("orders", json.RawMessage(`[{"orderId":"o1"}]`))
	raw, ok := m.Get("orders")
	require.True(t, ok)
	assert.JSONEq(t, `[{"orderId":"o1"}]`, string(raw))

	assert.True(t, m.Has("orders"))
	m.Delete("orders")
	assert.False(t, m.Has("orders"))
	_, ok = m.Get("orders")
	assert.False(t, ok)
}

func TestMirrorTypedValues(t *testing.T) {
	m := New()

	require.NoError(t, m.SetValue(KeyAuthToken, "tok-123"))

	var token string
	require.NoError(t, m.GetInto(KeyAuthToken, &token))
	assert.Equal(t, "tok-123", token)

	var missing string
	assert.Error(t, m.GetInto("nope", &missing))
}

func TestMirrorClear(t *testing.T) {
	m := New()
	m.Set("a", json.RawMessage(`1`))
	m.Set("b", json.RawMessage(`2`))

	m.Clear()
	assert.False(t, m.Has("a"))
	assert.False(t, m.Has("b"))
}

func TestMirrorPersistent(t *testing.T) {
	backing := filestore.NewMemStore()

	m := NewPersistent(backing)
	require.NoError(t, m.SetValue(KeyAuthToken, "tok-456"))
	m.Set("orders", json.RawMessage(`[{"orderId":"o1"}]`))
	m.Delete("orders")

	// 同一后端重建镜像，登录态还在，删除的项没有回来
	restored := NewPersistent(backing)
	var token string
	require.NoError(t, restored.GetInto(KeyAuthToken, &token))
	assert.Equal(t, "tok-456", token)
	assert.False(t, restored.Has("orders"))

	restored.Clear()
	empty := NewPersistent(backing)
	assert.False(t, empty.Has(KeyAuthToken))
}

func TestMirrorCopiesData(t *testing.T) {
	m := New()
	src := json.RawMessage(`[1,2,3]`)
	m.Set("k", src)

	// 修改调用方切片不应影响镜像内容
	src[1] = '9'
	raw, ok := m.Get("k")
	require.True(t, ok)
	assert.JSONEq(t, `[1,2,3]`, string(raw))
}
