package middleware

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

var _ = Describe("RateLimiter", func() {
	It("allows requests under the per-minute limit and rejects the next one", func() {
		limiter := NewRateLimiter(RateLimitConfig{
			RequestsPerMinute: 3,
			RequestsPerHour:   100,
			BurstLimit:        100,
		})

		for i := 0; i < 3; i++ {
			allowed, _ := limiter.Allow("1.2.3.4")
			Expect(allowed).To(BeTrue())
		}
		allowed, wait := limiter.Allow("1.2.3.4")
		Expect(allowed).To(BeFalse())
		Expect(wait).To(BeNumerically(">=", 1))
	})

	It("tracks keys independently", func() {
		limiter := NewRateLimiter(RateLimitConfig{
			RequestsPerMinute: 1,
			RequestsPerHour:   100,
			BurstLimit:        100,
		})

		allowed, _ := limiter.Allow("1.2.3.4")
		Expect(allowed).To(BeTrue())
		allowed, _ = limiter.Allow("1.2.3.4")
		Expect(allowed).To(BeFalse())

		allowed, _ = limiter.Allow("5.6.7.8")
		Expect(allowed).To(BeTrue())
	})

	It("drops keys once all their windows have expired", func() {
		limiter := NewRateLimiter(DefaultRateLimitConfig())
		limiter.Allow("1.2.3.4")
		limiter.Allow("5.6.7.8")

		limiter.mu.Lock()
		defer limiter.mu.Unlock()
		Expect(limiter.hours).To(HaveLen(2))

		limiter.maybeSweep(time.Now().Add(2 * time.Hour))
		Expect(limiter.seconds).To(BeEmpty())
		Expect(limiter.minutes).To(BeEmpty())
		Expect(limiter.hours).To(BeEmpty())
	})

	It("keeps keys that still have live entries after a sweep", func() {
		limiter := NewRateLimiter(DefaultRateLimitConfig())
		limiter.Allow("1.2.3.4")

		limiter.mu.Lock()
		defer limiter.mu.Unlock()
		limiter.maybeSweep(time.Now().Add(30 * time.Minute))
		Expect(limiter.seconds).To(BeEmpty())
		Expect(limiter.minutes).To(BeEmpty())
		Expect(limiter.hours).To(HaveKey("1.2.3.4"))
	})

	It("reports how many requests remain in the minute window", func() {
		limiter := NewRateLimiter(RateLimitConfig{
			RequestsPerMinute: 5,
			RequestsPerHour:   100,
			BurstLimit:        100,
		})

		Expect(limiter.Remaining("1.2.3.4")).To(Equal(5))
		limiter.Allow("1.2.3.4")
		limiter.Allow("1.2.3.4")
		Expect(limiter.Remaining("1.2.3.4")).To(Equal(3))
	})
})
