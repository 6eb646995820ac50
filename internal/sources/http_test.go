package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
)

func fastRetry(f *fetcher) {
	f.retryCfg.InitialDelay = time.Millisecond
	f.retryCfg.MaxDelay = 5 * time.Millisecond
}

func TestOpenFDAPagesUntilShortPage(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		switch r.URL.Query().Get("skip") {
		case "0":
			fmt.Fprint(w, `{"results":[
				{"openfda":{"brand_name":["Tylenol"],"generic_name":["ACETAMINOPHEN"]}},
				{"openfda":{"brand_name":["Advil"],"generic_name":["ibuprofen"],"substance_name":["IBUPROFEN"]}}
			]}`)
		case "2":
			fmt.Fprint(w, `{"results":[{"openfda":{"generic_name":["Metformin Hydrochloride"]}}]}`)
		default:
			t.Errorf("unexpected skip %s", r.URL.Query().Get("skip"))
		}
	}))
	defer srv.Close()

	src := NewOpenFDASource(OpenFDAConfig{BaseURL: srv.URL, PageSize: 2, MaxPages: 5})
	recs := drain(t, src)

	var names []string
	for _, r := range recs {
		assert.Equal(t, terms.CategoryMedication, r.Category)
		assert.Equal(t, "OpenFDA", r.Source)
		names = append(names, r.Term)
	}
	assert.Equal(t, []string{"tylenol", "acetaminophen", "advil", "ibuprofen", "metformin hydrochloride"}, names)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestOpenFDANotFoundEndsSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"NOT_FOUND"}}`, http.StatusNotFound)
	}))
	defer srv.Close()

	src := NewOpenFDASource(OpenFDAConfig{BaseURL: srv.URL})
	_, err := src.FetchNextBatch(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestOpenFDARetriesRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "30")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"results":[{"openfda":{"brand_name":["Lipitor"]}}]}`)
	}))
	defer srv.Close()

	src := NewOpenFDASource(OpenFDAConfig{BaseURL: srv.URL, PageSize: 10})
	fastRetry(src.fetch)

	batch, err := src.FetchNextBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "lipitor", batch[0].Term)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 30*time.Second, parseRetryAfter(" 30 "))
	assert.Zero(t, parseRetryAfter(""))
	assert.Zero(t, parseRetryAfter("-1"))
	assert.Zero(t, parseRetryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
}

func TestOpenFDAClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	src := NewOpenFDASource(OpenFDAConfig{BaseURL: srv.URL})
	_, err := src.FetchNextBatch(context.Background())
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusBadRequest))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRxNormResolvesConfiguredDrugs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rxcui.json", r.URL.Path)
		switch r.URL.Query().Get("name") {
		case "aspirin":
			fmt.Fprint(w, `{"idGroup":{"name":"aspirin","rxnormId":["1191"]}}`)
		case "warfarin":
			fmt.Fprint(w, `{"idGroup":{"name":"warfarin","rxnormId":["11289"]}}`)
		default:
			fmt.Fprint(w, `{"idGroup":{"name":"unknownium"}}`)
		}
	}))
	defer srv.Close()

	src := NewRxNormSource(RxNormConfig{BaseURL: srv.URL + "/", Drugs: []string{"aspirin", "unknownium", " ", "warfarin"}})
	recs := drain(t, src)

	require.Len(t, recs, 2)
	assert.Equal(t, "aspirin", recs[0].Term)
	assert.Equal(t, "1191", recs[0].ConceptID)
	assert.Equal(t, 0.95, recs[0].Confidence)
	assert.Equal(t, "RxNorm-API", recs[1].Source)
	assert.Equal(t, "11289", recs[1].ConceptID)
}

func TestFHIRFollowsNextLinks(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Condition", r.URL.Path)
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"resourceType":"Bundle","entry":[
				{"resource":{"resourceType":"Condition","code":{"coding":[
					{"system":"http://hl7.org/fhir/sid/icd-10-cm","code":"I10","display":"Essential hypertension"}]}}}
			]}`)
			return
		}
		fmt.Fprintf(w, `{"resourceType":"Bundle",
			"link":[{"relation":"self","url":"x"},{"relation":"next","url":"%s/Condition?page=2"}],
			"entry":[
				{"resource":{"resourceType":"Condition","code":{"text":"Asthma","coding":[
					{"system":"http://hl7.org/fhir/sid/icd-10-cm","code":"J45","display":"Asthma"},
					{"system":"http://snomed.info/sct","code":"195967001","display":"Asthma (disorder)"}]}}},
				{"resource":{"resourceType":"Patient"}}
			]}`, srv.URL)
	}))
	defer srv.Close()

	src := NewFHIRSource(FHIRConfig{BaseURL: srv.URL, PageSize: 10})
	recs := drain(t, src)

	require.Len(t, recs, 3)
	assert.Equal(t, "asthma", recs[0].Term)
	assert.Equal(t, "195967001", recs[0].ConceptID)
	assert.Equal(t, "asthma (disorder)", recs[1].Term)
	assert.Equal(t, "essential hypertension", recs[2].Term)
	assert.Equal(t, "I10", recs[2].ConceptID)
	for _, r := range recs {
		assert.Equal(t, terms.CategoryCondition, r.Category)
		assert.Equal(t, 0.90, r.Confidence)
	}
}

func TestFHIRRespectsMaxPages(t *testing.T) {
	var calls int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprintf(w, `{"resourceType":"Bundle","link":[{"relation":"next","url":"%s/Condition"}]}`, srv.URL)
	}))
	defer srv.Close()

	src := NewFHIRSource(FHIRConfig{BaseURL: srv.URL, MaxPages: 3})
	assert.Empty(t, drain(t, src))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetcherHonoursCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewRxNormSource(RxNormConfig{BaseURL: srv.URL, Drugs: []string{"aspirin"}})
	_, err := src.FetchNextBatch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
