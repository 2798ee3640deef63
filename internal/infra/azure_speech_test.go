package infra

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Vovarama1992/voice-relay/internal/models"
	"github.com/Vovarama1992/voice-relay/internal/testutil"
)

type speechStub struct {
	sttStatus   int
	sttBody     string
	trStatus    int
	trBody      string
	gotLanguage string
	gotFrom     string
	gotTo       string
	gotRegion   string
	gotText     string
}

func (s *speechStub) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/westeurope/stt", func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "audio/wav; codecs=audio/pcm; samplerate=16000" {
			t.Errorf("unexpected content type %q", ct)
		}
		if r.Header.Get("Ocp-Apim-Subscription-Key") != "key" {
			t.Errorf("missing key header")
		}
		body, _ := io.ReadAll(r.Body)
		if string(body[:4]) != "RIFF" {
			t.Errorf("expected wav body")
		}
		s.gotLanguage = r.URL.Query().Get("language")
		w.WriteHeader(s.sttStatus)
		_, _ = io.WriteString(w, s.sttBody)
	})
	mux.HandleFunc("/translate", func(w http.ResponseWriter, r *http.Request) {
		s.gotFrom = r.URL.Query().Get("from")
		s.gotTo = r.URL.Query().Get("to")
		s.gotRegion = r.Header.Get("Ocp-Apim-Subscription-Region")
		var in []struct{ Text string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		if len(in) == 1 {
			s.gotText = in[0].Text
		}
		w.WriteHeader(s.trStatus)
		_, _ = io.WriteString(w, s.trBody)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func recognizeOnce(t *testing.T, eng *AzureSpeech, translate bool, cfg models.SessionConfig) models.RecognitionResult {
	t.Helper()
	build := eng.NewSpeechRecognizer
	if translate {
		build = eng.NewTranslationRecognizer
	}
	rec, err := build(cfg, testutil.SilenceWAV())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rec.Close()

	select {
	case res := <-rec.RecognizeOnce(context.Background()):
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("no result")
	}
	return models.RecognitionResult{}
}

var sttCfg = models.SessionConfig{SubscriptionKey: "key", Region: "westeurope", SourceLanguage: "en-US"}

func TestAzureRecognizeReasons(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		reason models.ResultReason
		text   string
	}{
		{"success", 200, `{"RecognitionStatus":"Success","DisplayText":"hello world.","Offset":100,"Duration":2000}`, models.ReasonRecognizedSpeech, "hello world."},
		{"no match", 200, `{"RecognitionStatus":"NoMatch"}`, models.ReasonNoMatch, ""},
		{"silence", 200, `{"RecognitionStatus":"InitialSilenceTimeout"}`, models.ReasonNoMatch, ""},
		{"empty text", 200, `{"RecognitionStatus":"Success","DisplayText":"  "}`, models.ReasonNoMatch, ""},
		{"service error", 200, `{"RecognitionStatus":"Error"}`, models.ReasonCanceled, ""},
		{"unauthorized", 401, `{"error":"denied"}`, models.ReasonCanceled, ""},
		{"bad json", 200, `<html>`, models.ReasonCanceled, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &speechStub{sttStatus: tc.status, sttBody: tc.body}
			srv := stub.server(t)
			eng := NewAzureSpeech(srv.URL+"/%s/stt", NewAzureTranslator(srv.URL))

			res := recognizeOnce(t, eng, false, sttCfg)
			if res.Reason != tc.reason {
				t.Fatalf("expected %s, got %s (%s)", tc.reason, res.Reason, res.ErrorDetails)
			}
			if res.Text != tc.text {
				t.Errorf("expected %q, got %q", tc.text, res.Text)
			}
			if stub.gotLanguage != "en-US" {
				t.Errorf("expected language en-US, got %q", stub.gotLanguage)
			}
		})
	}
}

func TestAzureTranslate(t *testing.T) {
	stub := &speechStub{
		sttStatus: 200,
		sttBody:   `{"RecognitionStatus":"Success","DisplayText":"早上好。"}`,
		trStatus:  200,
		trBody:    `[{"translations":[{"text":"Good morning.","to":"en"}]}]`,
	}
	srv := stub.server(t)
	eng := NewAzureSpeech(srv.URL+"/%s/stt", NewAzureTranslator(srv.URL+"/"))

	cfg := models.SessionConfig{SubscriptionKey: "key", Region: "westeurope", SourceLanguage: "zh-CN", TargetLanguages: []string{"en"}}
	res := recognizeOnce(t, eng, true, cfg)

	if res.Reason != models.ReasonTranslatedSpeech {
		t.Fatalf("expected TranslatedSpeech, got %s (%s)", res.Reason, res.ErrorDetails)
	}
	if res.Translations["en"] != "Good morning." {
		t.Fatalf("unexpected translations %v", res.Translations)
	}
	if stub.gotLanguage != "zh-CN" || stub.gotFrom != "zh-Hans" || stub.gotTo != "en" {
		t.Errorf("unexpected languages stt=%q from=%q to=%q", stub.gotLanguage, stub.gotFrom, stub.gotTo)
	}
	if stub.gotRegion != "westeurope" || stub.gotText != "早上好。" {
		t.Errorf("unexpected translator call region=%q text=%q", stub.gotRegion, stub.gotText)
	}
}

func TestAzureTranslateFailures(t *testing.T) {
	cfg := models.SessionConfig{SubscriptionKey: "key", Region: "westeurope", SourceLanguage: "zh-CN", TargetLanguages: []string{"en"}}

	t.Run("nothing recognized", func(t *testing.T) {
		stub := &speechStub{sttStatus: 200, sttBody: `{"RecognitionStatus":"NoMatch"}`}
		srv := stub.server(t)
		res := recognizeOnce(t, NewAzureSpeech(srv.URL+"/%s/stt", NewAzureTranslator(srv.URL)), true, cfg)
		if res.Reason != models.ReasonNoMatch {
			t.Fatalf("expected NoMatch, got %s", res.Reason)
		}
		if stub.gotFrom != "" {
			t.Error("translator should not be called")
		}
	})

	t.Run("translator rejects", func(t *testing.T) {
		stub := &speechStub{
			sttStatus: 200, sttBody: `{"RecognitionStatus":"Success","DisplayText":"你好"}`,
			trStatus: 401, trBody: `{"error":{"code":401000}}`,
		}
		srv := stub.server(t)
		res := recognizeOnce(t, NewAzureSpeech(srv.URL+"/%s/stt", NewAzureTranslator(srv.URL)), true, cfg)
		if res.Reason != models.ReasonCanceled {
			t.Fatalf("expected Canceled, got %s", res.Reason)
		}
	})
}

func TestAzureRecognizerIsSingleShot(t *testing.T) {
	stub := &speechStub{sttStatus: 200, sttBody: `{"RecognitionStatus":"Success","DisplayText":"once"}`}
	srv := stub.server(t)
	eng := NewAzureSpeech(srv.URL+"/%s/stt", nil)

	rec, err := eng.NewSpeechRecognizer(sttCfg, testutil.SilenceWAV())
	if err != nil {
		t.Fatal(err)
	}
	defer rec.Close()

	if res := <-rec.RecognizeOnce(context.Background()); res.Reason != models.ReasonRecognizedSpeech {
		t.Fatalf("expected first pass to succeed, got %s", res.Reason)
	}
	if res := <-rec.RecognizeOnce(context.Background()); res.Reason != models.ReasonCanceled {
		t.Fatalf("expected second pass to be refused, got %s", res.Reason)
	}
}

func TestAzureCloseCancelsInFlight(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	rec, err := NewAzureSpeech(srv.URL+"/%s", nil).NewSpeechRecognizer(sttCfg, testutil.SilenceWAV())
	if err != nil {
		t.Fatal(err)
	}
	out := rec.RecognizeOnce(context.Background())
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}

	select {
	case res := <-out:
		if res.Reason != models.ReasonCanceled {
			t.Fatalf("expected Canceled after close, got %s", res.Reason)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("close did not cancel the in-flight request")
	}
}

func TestAzureRejectsBadSession(t *testing.T) {
	eng := NewAzureSpeech("http://unused/%s", NewAzureTranslator("http://unused"))

	if _, err := eng.NewSpeechRecognizer(sttCfg, []byte("not wav")); err == nil {
		t.Error("expected error for non-wav input")
	}
	if _, err := eng.NewSpeechRecognizer(models.SessionConfig{SourceLanguage: "en-US"}, testutil.SilenceWAV()); err == nil {
		t.Error("expected error without key and region")
	}
	if _, err := eng.NewTranslationRecognizer(sttCfg, testutil.SilenceWAV()); err == nil {
		t.Error("expected error without a target language")
	}
}

func TestTranslatorCode(t *testing.T) {
	cases := map[string]string{
		"zh-CN": "zh-Hans",
		"zh-TW": "zh-Hant",
		"en":    "en",
		"en-US": "en",
		"fr-FR": "fr",
	}
	for in, want := range cases {
		if got := translatorCode(in); got != want {
			t.Errorf("%s: expected %s, got %s", in, want, got)
		}
	}
}
