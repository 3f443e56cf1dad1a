package discovery_test

import (
	"context"
	"errors"
	"os"
	"strings"

	"code.cloudfoundry.org/lager/v3/lagertest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/tedsuo/ifrit"

	"github.com/winston-ci/buildwatch/api"
	"github.com/winston-ci/buildwatch/discovery"
	"github.com/winston-ci/buildwatch/fetcher/fetcherfakes"
)

var _ = Describe("Pool", func() {
	var (
		fakeFetcher *fetcherfakes.FakeFetcher
		pool        *discovery.Pool
		process     ifrit.Process
	)

	targets := []api.BuildTarget{
		{Name: "job-a", URL: "https://ci.example.com/job/main/job/job-a"},
		{Name: "job-b", URL: "https://ci.example.com/job/main/job/job-b"},
	}

	BeforeEach(func() {
		fakeFetcher = new(fetcherfakes.FakeFetcher)

		logger := lagertest.NewTestLogger("test")
		pool = discovery.NewPool(logger, discovery.NewDiscoverer(logger, fakeFetcher), targets)
	})

	AfterEach(func() {
		if process != nil {
			process.Signal(os.Interrupt)
			Eventually(process.Wait()).Should(Receive())
		}
	})

	It("exposes one future per target, in configuration order", func() {
		futures := pool.Futures()
		Expect(futures).To(HaveLen(2))
		Expect(futures[0].Target()).To(Equal(targets[0]))
		Expect(futures[1].Target()).To(Equal(targets[1]))
	})

	Context("when every listing resolves", func() {
		BeforeEach(func() {
			fakeFetcher.FetchStub = func(ctx context.Context, url string) ([]byte, error) {
				if strings.Contains(url, "job-a") {
					return []byte(`{"builds": [{"url": "https://ci.example.com/job/main/job/job-a/1/"}]}`), nil
				}
				return []byte(`{"builds": [{"url": "https://ci.example.com/job/main/job/job-b/1/"}]}`), nil
			}
		})

		It("resolves every future exactly once and exits", func() {
			process = ifrit.Invoke(pool.Runner())
			Eventually(process.Wait()).Should(Receive(BeNil()))

			urls, err := pool.Futures()[0].Wait(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(urls).To(Equal([]string{"https://ci.example.com/job/main/job/job-a/1/"}))

			urls, err = pool.Futures()[1].Wait(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(urls).To(Equal([]string{"https://ci.example.com/job/main/job/job-b/1/"}))
		})
	})

	Context("when one target's discovery fails", func() {
		disaster := errors.New("nope")

		BeforeEach(func() {
			fakeFetcher.FetchStub = func(ctx context.Context, url string) ([]byte, error) {
				if strings.Contains(url, "job-a") {
					return nil, disaster
				}
				return []byte(`{"builds": []}`), nil
			}
		})

		It("records the failure in that future only", func() {
			process = ifrit.Invoke(pool.Runner())
			Eventually(process.Wait()).Should(Receive(BeNil()))

			_, err := pool.Futures()[0].Wait(context.Background())
			Expect(err).To(Equal(disaster))

			_, err = pool.Futures()[1].Wait(context.Background())
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Context("when the pool is signalled before discovery resolves", func() {
		BeforeEach(func() {
			fakeFetcher.FetchStub = func(ctx context.Context, url string) ([]byte, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			}
		})

		It("leaves the futures cancelled", func() {
			process = ifrit.Invoke(pool.Runner())
			process.Signal(os.Interrupt)
			Eventually(process.Wait()).Should(Receive(BeNil()))

			for _, future := range pool.Futures() {
				_, err := future.Wait(context.Background())
				Expect(err).To(Equal(discovery.ErrCancelled))
			}

			process = nil
		})
	})

	Describe("Future.Wait", func() {
		It("respects the caller's context while unresolved", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := pool.Futures()[0].Wait(ctx)
			Expect(err).To(Equal(context.Canceled))
		})
	})
})
