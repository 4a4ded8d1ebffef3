package metrics

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/GriffinCanCode/gatorbrowse/internal/browser"
	"github.com/GriffinCanCode/gatorbrowse/internal/browser/plugins/redirect"
	"github.com/GriffinCanCode/gatorbrowse/internal/infrastructure/monitoring"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountsFetchesAndDispatches(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><meta http-equiv="refresh" content="0; url=/end"></html>`)
	})
	mux.HandleFunc("/end", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><title>end</title></html>")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	u, _ := url.Parse(srv.URL)

	p := New(nil)
	b, err := browser.New(browser.WithPlugins(redirect.NewMetaRefresh(0), p))
	require.NoError(t, err)

	page, err := b.Load(context.Background(), srv.URL+"/start")
	require.NoError(t, err)
	assert.Equal(t, "end", page.Title())

	m := p.Metrics()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("GET", u.Host, "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DispatchesTotal.WithLabelValues("ok")))

	v, err := b.Get(PropertyMetrics)
	require.NoError(t, err)
	assert.Same(t, m, v.(*monitoring.Metrics))
}

func TestCountsFailedDispatches(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	dead := srv.URL
	srv.Close()

	p := New(nil)
	b, err := browser.New(browser.WithPlugins(p))
	require.NoError(t, err)

	_, err = b.Load(context.Background(), dead)
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Metrics().DispatchesTotal.WithLabelValues("error")))
	assert.Equal(t, int64(1), p.Metrics().Snapshot().TotalErrors)
}
