// Package bearchat provides the translation pipeline behind a live
// speech-translation view.
//
// Recognized text arrives as a rapidly changing stream. A Session debounces
// it, an Orchestrator resolves each quiet-period value through a persistent
// translation cache and, on a miss, an OpenAI-compatible chat completion
// endpoint, and only the result belonging to the most recent input is ever
// published.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/bearchat"
//	    "github.com/ZaguanLabs/bearchat/cache"
//	    "github.com/ZaguanLabs/bearchat/provider"
//	    "github.com/ZaguanLabs/bearchat/store"
//	)
//
//	func main() {
//	    p, err := provider.NewOpenAITranslator(provider.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	        Model:  provider.DefaultModel,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    o, err := bearchat.NewOrchestrator(p, cache.New(store.NewMemoryStore()),
//	        bearchat.WithLanguages(bearchat.Chinese, bearchat.Japanese),
//	        bearchat.WithResultHandler(func(r bearchat.Result) {
//	            fmt.Println(r.Text)
//	        }),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    s := bearchat.NewSession(o)
//	    s.Update("你好")
//	    s.Drain()
//	}
package bearchat
