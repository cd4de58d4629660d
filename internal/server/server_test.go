package server

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-dynform/internal/config"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/state"
	"github.com/goliatone/go-dynform/pkg/testsupport"
)

const testSchema = `{
  "formTitle": "Signup",
  "formDescription": "Join **us**",
  "fields": [
    {"id": "name", "type": "text", "label": "Name", "required": true, "validation": {"minLength": 2}},
    {"id": "topics", "type": "checkbox", "label": "Topics", "options": [{"value": "go", "label": "Go"}, {"value": "web", "label": "Web"}]},
    {"id": "plan", "type": "select", "label": "Plan", "options": [{"value": "free", "label": "Free"}, {"value": "pro", "label": "Pro"}]}
  ]
}`

func testConfig() *config.Config {
	return &config.Config{
		Addr:             "127.0.0.1:0",
		MaxSessions:      8,
		IdleTimeout:      time.Hour,
		ThemeVariant:     "light",
		ToggleValidation: "post",
		ReadTimeout:      time.Second,
		ShutdownTimeout:  time.Second,
		MaxUploadBytes:   1 << 20,
		LogLevel:         "error",
	}
}

type harness struct {
	t      *testing.T
	srv    *Server
	ts     *httptest.Server
	client *http.Client
	token  string
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	opts = append([]Option{WithSchema(testsupport.MustParse(t, testSchema))}, opts...)
	srv, err := New(testConfig(), opts...)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := ts.Client()
	client.Jar = jar
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	h := &harness{t: t, srv: srv, ts: ts, client: client}
	_, resp := h.page("/")
	h.token = resp.Header.Get(CSRFHeader)
	require.NotEmpty(t, h.token)
	return h
}

func (h *harness) page(path string) (string, *http.Response) {
	h.t.Helper()

	resp, err := h.client.Get(h.ts.URL + path)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return string(body), resp
}

func (h *harness) post(path string, form url.Values, accept string) (*http.Response, string) {
	h.t.Helper()

	req, err := http.NewRequest(http.MethodPost, h.ts.URL+path, strings.NewReader(form.Encode()))
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return h.do(req)
}

func (h *harness) upload(path, field, name, content string, extra url.Values) (*http.Response, string) {
	h.t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for key, values := range extra {
		for _, value := range values {
			require.NoError(h.t, mw.WriteField(key, value))
		}
	}
	part, err := mw.CreateFormFile(field, name)
	require.NoError(h.t, err)
	_, err = io.WriteString(part, content)
	require.NoError(h.t, err)
	require.NoError(h.t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, h.ts.URL+path, &body)
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return h.do(req)
}

func (h *harness) do(req *http.Request) (*http.Response, string) {
	h.t.Helper()

	resp, err := h.client.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp, string(data)
}

func (h *harness) csrf(values url.Values) url.Values {
	if values == nil {
		values = url.Values{}
	}
	values.Set("_csrf", h.token)
	return values
}

func TestServer_PageRendersSchemaAndSetsSession(t *testing.T) {
	h := newHarness(t)

	body, resp := h.page("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, `<h2 id="dynform-title">Signup</h2>`)
	assert.Contains(t, body, "<strong>us</strong>")
	assert.Contains(t, body, `<input type="hidden" name="_csrf" value="`+h.token+`">`)
	assert.Contains(t, body, `href="/assets/dynform.css"`)

	u, _ := url.Parse(h.ts.URL)
	cookies := h.client.Jar.Cookies(u)
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)

	health, _ := h.page("/healthz")
	assert.JSONEq(t, `{"status":"ok","sessions":1}`, health)
}

func TestServer_FragmentAndSubset(t *testing.T) {
	h := newHarness(t)

	body, _ := h.page("/?fragment=1&only=name")
	assert.Contains(t, body, `data-field="name"`)
	assert.NotContains(t, body, `data-field="topics"`)
	assert.NotContains(t, body, "<html")
}

func TestServer_PostsRequireCSRF(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.post("/submit", url.Values{"name": {"Ada"}}, "application/json")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = h.post("/submit", url.Values{"name": {"Ada"}, "_csrf": {"forged"}}, "application/json")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServer_SubmitValidatesAndNotifies(t *testing.T) {
	h := newHarness(t)

	resp, body := h.post("/submit", h.csrf(url.Values{"name": {"a"}, "topics": {""}, "plan": {""}}), "application/json")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.JSONEq(t, `{"accepted":false,"errors":{"name":"Minimum length is 2."}}`, body)

	resp, body = h.post("/submit", h.csrf(url.Values{"name": {"Ada"}, "topics": {"", "web"}, "plan": {"pro"}}), "application/json")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"accepted":true,"payload":{"name":"Ada","topics":["web"],"plan":"pro"}}`, body)

	page, _ := h.page("/")
	assert.Contains(t, page, `<p class="notice notice-info">Form submitted:`)
	assert.Contains(t, page, `id="topics-web" name="topics" value="web" checked`)

	again, _ := h.page("/")
	assert.NotContains(t, again, "Form submitted:")
}

func TestServer_SubmitWithoutFieldsAnswersEmptyPayload(t *testing.T) {
	h := newHarness(t, WithSchema(model.FormSchema{FormTitle: "T", FormDescription: "D"}))

	resp, body := h.post("/submit", h.csrf(url.Values{}), "application/json")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"accepted":true,"payload":{}}`, body)
}

func TestServer_SubmitRedirectsBrowsers(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.post("/submit", h.csrf(url.Values{"name": {""}}), "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	page, _ := h.page("/")
	assert.Contains(t, page, `<span class="error-message">This field is required.</span>`)
}

func TestServer_SubmitUsesConfiguredSubmitter(t *testing.T) {
	var got model.Values
	h := newHarness(t, WithSubmitter(state.SubmitterFunc(func(_ context.Context, payload model.Values) error {
		got = payload
		return nil
	})))

	resp, _ := h.post("/submit", h.csrf(url.Values{"name": {"Ada"}}), "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	text, _ := got["name"].AsText()
	assert.Equal(t, "Ada", text)
}

func TestServer_FieldEndpoint(t *testing.T) {
	h := newHarness(t)

	resp, body := h.post("/fields/name", h.csrf(url.Values{"value": {"a"}}), "application/json")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"field":"name","valid":false,"error":"Minimum length is 2."}`, body)

	_, body = h.post("/fields/topics", h.csrf(url.Values{"value": {"go"}, "checked": {"true"}}), "application/json")
	assert.JSONEq(t, `{"field":"topics","valid":true}`, body)

	_, body = h.post("/fields/name", h.csrf(url.Values{"value": {"Ada"}}), "text/html")
	assert.Contains(t, body, `data-field="name"`)
	assert.Contains(t, body, `value="Ada"`)
	assert.NotContains(t, body, `data-field="topics"`)

	resp, _ = h.post("/fields/ghost", h.csrf(url.Values{"value": {"x"}}), "application/json")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	page, _ := h.page("/")
	assert.Contains(t, page, `id="topics-go" name="topics" value="go" checked`)
}

func TestServer_ImportAndExport(t *testing.T) {
	h := newHarness(t)

	doc := `{"formTitle": "Contact", "formDescription": "", "fields": [{"id": "email", "type": "email", "label": "Email"}]}`
	resp, _ := h.upload("/schema/import", "file", "contact.json", doc, h.csrf(nil))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	page, _ := h.page("/")
	assert.Contains(t, page, "Schema imported successfully!")
	assert.Contains(t, page, `<h2 id="dynform-title">Contact</h2>`)

	body, resp := h.page("/schema/export?format=yaml")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename=formSchema.yaml`)
	assert.True(t, strings.HasPrefix(body, "formTitle: Contact"), body)

	body, resp = h.page("/schema/export")
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	assert.Contains(t, body, `"formTitle": "Contact"`)
}

func TestServer_InvalidImportKeepsSchema(t *testing.T) {
	h := newHarness(t)

	_, _ = h.upload("/schema/import", "file", "broken.json", `{"formTitle": `, h.csrf(nil))

	page, _ := h.page("/")
	assert.Contains(t, page, `<p class="notice notice-error">Invalid JSON file.`)
	assert.Contains(t, page, `<h2 id="dynform-title">Signup</h2>`)
}

func TestServer_EditorAndTheme(t *testing.T) {
	h := newHarness(t)

	resp, body := h.post("/schema/editor", h.csrf(url.Values{"schema": {`{"formTitle": "X"`}}), "application/json")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, `"ok":false`)

	page, _ := h.page("/")
	assert.Contains(t, page, `<h2 id="dynform-title">Signup</h2>`)
	assert.Contains(t, page, `{&quot;formTitle&quot;: &quot;X&quot;</textarea>`)

	resp, _ = h.post("/schema/editor", h.csrf(url.Values{"schema": {`{"formTitle": "Edited", "formDescription": "", "fields": []}`}}), "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = h.post("/theme", h.csrf(url.Values{"variant": {"dark"}}), "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	page, _ = h.page("/")
	assert.Contains(t, page, `<h2 id="dynform-title">Edited</h2>`)
	assert.Contains(t, page, `data-theme="dark"`)

	resp, _ = h.post("/theme", h.csrf(url.Values{"variant": {"sepia"}}), "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_LiveEditor(t *testing.T) {
	h := newHarness(t)

	u, _ := url.Parse(h.ts.URL)
	header := http.Header{}
	for _, cookie := range h.client.Jar.Cookies(u) {
		header.Add("Cookie", cookie.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(h.ts.URL, "http")+"/ws", &websocket.DialOptions{HTTPHeader: header})
	require.NoError(t, err)
	defer conn.CloseNow()

	var reply liveReply
	require.NoError(t, wsjson.Write(ctx, conn, liveMessage{Type: "edit", Text: `{"formTitle": `}))
	require.NoError(t, wsjson.Read(ctx, conn, &reply))
	assert.Equal(t, "schema", reply.Type)
	assert.False(t, reply.OK)
	assert.NotEmpty(t, reply.Error)

	edited := `{"formTitle": "Live", "formDescription": "*now*", "fields": [{"id": "city", "type": "text", "label": "City"}]}`
	require.NoError(t, wsjson.Write(ctx, conn, liveMessage{Type: "edit", Text: edited}))
	require.NoError(t, wsjson.Read(ctx, conn, &reply))
	assert.True(t, reply.OK)
	assert.Equal(t, "Live", reply.Title)
	assert.Contains(t, reply.Description, "<em>now</em>")
	assert.Contains(t, reply.HTML, `data-field="city"`)

	require.NoError(t, wsjson.Write(ctx, conn, liveMessage{Type: "shout"}))
	require.NoError(t, wsjson.Read(ctx, conn, &reply))
	assert.Equal(t, "error", reply.Type)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))

	page, _ := h.page("/")
	assert.Contains(t, page, `<h2 id="dynform-title">Live</h2>`)
}

func TestServer_Catalog(t *testing.T) {
	catalog, err := schema.LoadFS(fstest.MapFS{
		"survey.yaml": {Data: []byte("formTitle: Survey\nformDescription: ''\nfields:\n  - id: mood\n    type: text\n    label: Mood\n")},
	})
	require.NoError(t, err)
	h := newHarness(t, WithCatalog(catalog))

	body, _ := h.page("/schemas")
	assert.JSONEq(t, `{"schemas":[{"name":"survey","title":"Survey","fields":1,"valid":true}]}`, body)

	resp, _ := h.post("/schemas/ghost", h.csrf(nil), "application/json")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = h.post("/schemas/survey", h.csrf(nil), "application/json")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true,"title":"Survey"}`, body)

	page, _ := h.page("/")
	assert.Contains(t, page, `<h2 id="dynform-title">Survey</h2>`)
	assert.Contains(t, page, "Schema imported successfully!")
}

func TestServer_AssetsAreServed(t *testing.T) {
	h := newHarness(t)

	body, resp := h.page("/assets/dynform.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "--bg")
}

func TestServer_ServeStopsWithContext(t *testing.T) {
	srv, err := New(testConfig())
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, listener) }()

	resp, err := http.Get("http://" + listener.Addr().String() + "/healthz")
	require.NoError(t, err)
	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "ok", health["status"])

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
