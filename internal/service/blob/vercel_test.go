package blob_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"inlineai.app/relay/internal/service/blob"
)

var _ = Describe("VercelStore", func() {
	var (
		server  *httptest.Server
		handler http.HandlerFunc
		store   blob.Store
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			handler(w, r)
		}))

		var err error
		store, err = blob.NewVercelStore(blob.VercelConfig{Token: "blob-token", BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	It("requires a token", func() {
		_, err := blob.NewVercelStore(blob.VercelConfig{})
		Expect(err).To(HaveOccurred())
	})

	It("uploads the bytes and returns the public url", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Method).To(Equal(http.MethodPut))
			Expect(r.URL.Query().Get("pathname")).To(Equal("ai-requests/1-abc.png"))
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer blob-token"))
			Expect(r.Header.Get("x-content-type")).To(Equal("image/png"))
			Expect(r.Header.Get("x-add-random-suffix")).To(Equal("0"))
			body, _ := io.ReadAll(r.Body)
			Expect(body).To(Equal([]byte{0x89, 'P', 'N', 'G'}))

			_ = json.NewEncoder(w).Encode(map[string]string{
				"url":         "https://store.public.blob.vercel-storage.com/ai-requests/1-abc.png",
				"pathname":    "ai-requests/1-abc.png",
				"contentType": "image/png",
			})
		}

		obj, err := store.Put(ctx, "ai-requests/1-abc.png", []byte{0x89, 'P', 'N', 'G'}, blob.PutOptions{
			Access:      blob.AccessPublic,
			ContentType: "image/png",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(obj.URL).To(Equal("https://store.public.blob.vercel-storage.com/ai-requests/1-abc.png"))
		Expect(obj.Pathname).To(Equal("ai-requests/1-abc.png"))
	})

	It("surfaces api errors", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"code":"forbidden","message":"Access denied"}}`))
		}

		_, err := store.Put(ctx, "x.png", []byte("x"), blob.PutOptions{Access: blob.AccessPublic})
		Expect(err).To(MatchError(ContainSubstring("Access denied")))
	})

	It("rejects a response without url", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}

		_, err := store.Put(ctx, "x.png", []byte("x"), blob.PutOptions{Access: blob.AccessPublic})
		Expect(err).To(HaveOccurred())
	})

	It("refuses non-public access without calling the api", func() {
		called := false
		handler = func(http.ResponseWriter, *http.Request) { called = true }

		_, err := store.Put(ctx, "x.png", []byte("x"), blob.PutOptions{Access: "private"})
		Expect(err).To(MatchError(blob.ErrUnsupportedAccess))
		Expect(called).To(BeFalse())
	})
})
