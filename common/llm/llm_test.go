package llm_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"inlineai.app/relay/common/llm"
)

type sample struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

var _ = Describe("DecodeStrict", func() {
	It("decodes a conforming document", func() {
		var out sample
		Expect(llm.DecodeStrict(`{"name":"a","items":["x","y"]}`, &out)).To(Succeed())
		Expect(out.Name).To(Equal("a"))
		Expect(out.Items).To(Equal([]string{"x", "y"}))
	})

	It("rejects unknown fields", func() {
		var out sample
		err := llm.DecodeStrict(`{"name":"a","items":[],"extra":true}`, &out)
		Expect(err).To(MatchError(ContainSubstring("unknown field")))
	})

	It("rejects trailing data", func() {
		var out sample
		Expect(llm.DecodeStrict(`{"name":"a"} {"name":"b"}`, &out)).NotTo(Succeed())
	})

	It("rejects non-JSON content", func() {
		var out sample
		Expect(llm.DecodeStrict("Sure! Here is the change request.", &out)).NotTo(Succeed())
	})
})

var _ = Describe("GenerateSchema", func() {
	It("produces an object schema that forbids additional properties", func() {
		raw, err := json.Marshal(llm.GenerateSchema[sample]())
		Expect(err).NotTo(HaveOccurred())

		var schema map[string]any
		Expect(json.Unmarshal(raw, &schema)).To(Succeed())
		Expect(schema["type"]).To(Equal("object"))
		Expect(schema["additionalProperties"]).To(BeFalse())
		Expect(schema["properties"]).To(HaveKey("items"))
		Expect(schema).NotTo(HaveKey("$ref"))
	})
})

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		content  string
		finish   string
		refusal  any
		captured map[string]any
	)

	BeforeEach(func() {
		content = `{"name":"ok","items":["one"]}`
		finish = "stop"
		refusal = nil
		captured = nil

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(HaveSuffix("/chat/completions"))
			body, _ := io.ReadAll(r.Body)
			Expect(json.Unmarshal(body, &captured)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":      "chatcmpl-1",
				"object":  "chat.completion",
				"created": 1,
				"model":   "gpt-4o",
				"choices": []map[string]any{{
					"index":         0,
					"finish_reason": finish,
					"message": map[string]any{
						"role":    "assistant",
						"content": content,
						"refusal": refusal,
					},
				}},
				"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19},
			})
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newClient := func() llm.Client {
		c, err := llm.New(llm.Config{APIKey: "test-key", BaseURL: server.URL + "/", Model: "gpt-4o"})
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	It("requires an API key", func() {
		_, err := llm.New(llm.Config{})
		Expect(err).To(HaveOccurred())
	})

	It("sends a strict json_schema response format and the temperature", func() {
		var out sample
		resp, err := newClient().Chat(context.Background(), llm.Request{
			UserPrompt:  "prompt",
			SchemaName:  "sample",
			Schema:      llm.GenerateSchema[sample](),
			Temperature: llm.Temp(0.3),
		}, &out)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Name).To(Equal("ok"))
		Expect(resp.PromptTokens).To(Equal(12))
		Expect(resp.CompletionTokens).To(Equal(7))

		Expect(captured["temperature"]).To(BeNumerically("~", 0.3, 0.0001))
		format := captured["response_format"].(map[string]any)
		Expect(format["type"]).To(Equal("json_schema"))
		schema := format["json_schema"].(map[string]any)
		Expect(schema["name"]).To(Equal("sample"))
		Expect(schema["strict"]).To(BeTrue())
	})

	It("fails when the content does not decode into the result", func() {
		content = `{"name":"ok","items":["one"],"bonus":1}`
		var out sample
		_, err := newClient().Chat(context.Background(), llm.Request{UserPrompt: "p", SchemaName: "sample"}, &out)
		Expect(err).To(HaveOccurred())
	})

	It("fails on refusals", func() {
		refusal = "I can't help with that"
		var out sample
		_, err := newClient().Chat(context.Background(), llm.Request{UserPrompt: "p", SchemaName: "sample"}, &out)
		Expect(err).To(MatchError(llm.ErrRefused))
	})

	It("fails when the output was cut off", func() {
		finish = "length"
		content = `{"name":"o`
		var out sample
		_, err := newClient().Chat(context.Background(), llm.Request{UserPrompt: "p", SchemaName: "sample"}, &out)
		Expect(err).To(MatchError(llm.ErrTruncated))
	})

	It("reports the configured model", func() {
		Expect(newClient().Model()).To(Equal("gpt-4o"))
		c, err := llm.New(llm.Config{APIKey: "k"})
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.HasPrefix(c.Model(), "gpt-")).To(BeTrue())
	})
})
