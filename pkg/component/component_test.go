package component

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeHTML(t *testing.T) {
	n := El("user-card", Text("<b>Ann & Bo</b>"))
	n.SetAttr("id", `4"2`)
	n.SetAttr("class", "card")

	assert.Equal(t, `<user-card class="card" id="4&#34;2">&lt;b&gt;Ann &amp; Bo&lt;/b&gt;</user-card>`, n.HTML())

	v, ok := n.Attr("id")
	assert.True(t, ok)
	assert.Equal(t, `4"2`, v)
}

func TestNodeVoidAndRaw(t *testing.T) {
	assert.Equal(t, `<br>`, El("br").HTML())
	assert.Equal(t, `<div><em>x</em></div>`, El("div", Raw("<em>x</em>")).HTML())
}

func TestAttrWhitespaceIsEscaped(t *testing.T) {
	n := El("p")
	n.SetAttr("title", "a\nb\tc\r'")
	assert.Equal(t, `<p title="a&#10;b&#9;c&#13;&#39;"></p>`, n.HTML())
}

func TestRegistryInstantiate(t *testing.T) {
	reg := NewRegistry()
	reg.Register("home-page", Template("home-page", "<h1>Home</h1>"))

	assert.True(t, reg.IsRegistered("home-page"))
	assert.False(t, reg.IsRegistered("nope"))

	a, err := reg.Instantiate("home-page")
	require.NoError(t, err)
	b, err := reg.Instantiate("home-page")
	require.NoError(t, err)
	assert.NotSame(t, a, b, "each instantiation yields a fresh element")
	assert.Equal(t, "<home-page><h1>Home</h1></home-page>", a.HTML())

	_, err = reg.Instantiate("nope")
	assert.ErrorIs(t, err, ErrUnknownComponent)

	assert.Equal(t, []string{"home-page"}, reg.Names())
}

func TestRegistryLoadSharesConcurrentCalls(t *testing.T) {
	reg := NewRegistry()
	var calls atomic.Int32
	release := make(chan struct{})

	load := func(context.Context) error {
		calls.Add(1)
		<-release
		reg.Register("lazy-page", Template("lazy-page", ""))
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = reg.Load(context.Background(), "lazy-page", load)
		}(i)
	}

	// Give the goroutines a chance to join the in-flight call.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, reg.IsRegistered("lazy-page"))

	// Already registered: the loader is not invoked again.
	require.NoError(t, reg.Load(context.Background(), "lazy-page", func(context.Context) error {
		t.Fatal("loader should not run for a registered component")
		return nil
	}))
}

func TestRegistryLoadErrors(t *testing.T) {
	reg := NewRegistry()
	boom := errors.New("boom")

	err := reg.Load(context.Background(), "x", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	err = reg.Load(context.Background(), "x", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrUnknownComponent)
}
