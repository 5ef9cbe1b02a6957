package targeter_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"inlineai.app/relay/internal/targeter"
)

var _ = Describe("ResolveLocator", func() {
	It("prefers the element's own marker over id and class", func() {
		doc := parseDoc(`<body><h1 data-testid="t" data-ai-id="hero-title" id="hero" class="big">Hi</h1></body>`)

		Expect(targeter.ResolveLocator(mustFind(doc, "t"))).To(Equal(`[data-ai-id="hero-title"]`))
	})

	It("uses the nearest marked ancestor", func() {
		doc := parseDoc(`<body>
			<section data-ai-id="outer"><div data-ai-id="pricing-card">
				<span><b data-testid="t" id="price">$9</b></span>
			</div></section>
		</body>`)

		Expect(targeter.ResolveLocator(mustFind(doc, "t"))).To(Equal(`[data-ai-id="pricing-card"]`))
	})

	It("escapes quotes in marker values", func() {
		doc := parseDoc(`<body><p data-testid="t" data-ai-id='say "hi"'>x</p></body>`)

		Expect(targeter.ResolveLocator(mustFind(doc, "t"))).To(Equal(`[data-ai-id="say \"hi\""]`))
	})

	It("falls back to the id", func() {
		doc := parseDoc(`<body><h1 data-testid="t" id="hero" class="big">Hi</h1></body>`)

		Expect(targeter.ResolveLocator(mustFind(doc, "t"))).To(Equal("#hero"))
	})

	It("escapes ids that are not plain identifiers", func() {
		doc := parseDoc(`<body><div data-testid="t" id="1st:item">x</div></body>`)

		Expect(targeter.ResolveLocator(mustFind(doc, "t"))).To(Equal(`#\31 st\:item`))
	})

	It("builds a four-level tag and first-class path otherwise", func() {
		doc := parseDoc(`<body><main class="page wide"><section class="hero"><div><h1 data-testid="t" class="title xl">Hi</h1></div></section></main></body>`)

		Expect(targeter.ResolveLocator(mustFind(doc, "t"))).To(Equal("main.page > section.hero > div > h1.title"))
	})

	It("stops at the root for shallow elements", func() {
		doc := parseDoc(`<body data-testid="t"></body>`)

		Expect(targeter.ResolveLocator(mustFind(doc, "t"))).To(Equal("html > body"))
	})

	It("escapes class tokens", func() {
		doc := parseDoc(`<body><div><p><span data-testid="t" class="md:text-lg">x</span></p></div></body>`)

		Expect(targeter.ResolveLocator(mustFind(doc, "t"))).To(Equal(`body > div > p > span.md\:text-lg`))
	})
})
