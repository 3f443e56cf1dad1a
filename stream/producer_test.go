package stream_test

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"code.cloudfoundry.org/lager/v3/lagertest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/tedsuo/ifrit"

	"github.com/winston-ci/buildwatch/api"
	"github.com/winston-ci/buildwatch/discovery"
	"github.com/winston-ci/buildwatch/fetcher/fetcherfakes"
	"github.com/winston-ci/buildwatch/stream"
)

const (
	job1Listing = "https://ci.example.com/job/main/job/job-1/api/json"
	job2Listing = "https://ci.example.com/job/main/job/job-2/api/json"

	build1 = "https://ci.example.com/job/main/job/job-1/1/"
	build2 = "https://ci.example.com/job/main/job/job-1/2/"
	build3 = "https://ci.example.com/job/main/job/job-2/1/"
)

func timePtr(t time.Time) *time.Time { return &t }
func boolPtr(b bool) *bool           { return &b }

var _ = Describe("Producer", func() {
	var (
		fakeFetcher *fetcherfakes.FakeFetcher
		documents   map[string]string
		listingErr  map[string]error

		pool     *discovery.Pool
		producer *stream.Producer
		process  ifrit.Process
	)

	targets := []api.BuildTarget{
		{Name: "job-1", URL: "https://ci.example.com/job/main/job/job-1"},
		{Name: "job-2", URL: "https://ci.example.com/job/main/job/job-2"},
	}

	BeforeEach(func() {
		fakeFetcher = new(fetcherfakes.FakeFetcher)
		listingErr = map[string]error{}

		// job 1 lists [b1, b2]; job 2 lists [b3]. b1 started at 100 and
		// carries a commit, b2 is running with no commits, b3 started at
		// 150 and carries a commit.
		documents = map[string]string{
			job1Listing: `{"builds": [{"url": "` + build1 + `"}, {"url": "` + build2 + `"}]}`,
			job2Listing: `{"builds": [{"url": "` + build3 + `"}]}`,

			build1 + "api/json": `{"fullDisplayName": "job-1 #1", "timestamp": 100, "building": false,
				"changeSet": {"items": [{"commitId": "abc"}]}}`,
			build2 + "api/json": `{"fullDisplayName": "job-1 #2", "timestamp": 200, "building": true}`,
			build3 + "api/json": `{"fullDisplayName": "job-2 #1", "timestamp": 150, "building": false,
				"changeSet": {"items": [{"commitId": "def"}]}}`,
		}

		fakeFetcher.FetchStub = func(ctx context.Context, url string) ([]byte, error) {
			if err, failing := listingErr[url]; failing {
				return nil, err
			}

			document, found := documents[url]
			if !found {
				return nil, errors.New("unexpected fetch: " + url)
			}

			return []byte(document), nil
		}
	})

	JustBeforeEach(func() {
		logger := lagertest.NewTestLogger("test")
		pool = discovery.NewPool(logger, discovery.NewDiscoverer(logger, fakeFetcher), targets)
		process = ifrit.Invoke(pool.Runner())

		producer = stream.NewProducer(logger, fakeFetcher, api.GitCommitExtractor{}, pool.Futures())
	})

	AfterEach(func() {
		process.Signal(os.Interrupt)
		Eventually(process.Wait()).Should(Receive())
	})

	descriptions := func(events []api.BuildEvent) []string {
		var names []string
		for _, event := range events {
			names = append(names, event.Description)
		}
		return names
	}

	Context("with no filter", func() {
		It("emits commitful builds in discovery order, jobs in configuration order", func() {
			events, err := stream.Drain(producer.Builds(context.Background(), stream.Filter{}))
			Expect(err).NotTo(HaveOccurred())

			// b2 is withheld: no commits to correlate
			Expect(descriptions(events)).To(Equal([]string{"job-1 #1", "job-2 #1"}))
		})

		It("is idempotent across queries", func() {
			first, err := stream.Drain(producer.Builds(context.Background(), stream.Filter{}))
			Expect(err).NotTo(HaveOccurred())

			second, err := stream.Drain(producer.Builds(context.Background(), stream.Filter{}))
			Expect(err).NotTo(HaveOccurred())

			Expect(second).To(Equal(first))
		})

		It("memoizes completed builds but refetches running ones", func() {
			_, err := stream.Drain(producer.Builds(context.Background(), stream.Filter{}))
			Expect(err).NotTo(HaveOccurred())

			fetchesAfterFirst := fakeFetcher.FetchCallCount()

			_, err = stream.Drain(producer.Builds(context.Background(), stream.Filter{}))
			Expect(err).NotTo(HaveOccurred())

			// only the running b2 goes back to the network
			Expect(fakeFetcher.FetchCallCount()).To(Equal(fetchesAfterFirst + 1))
		})
	})

	Context("with a since-time filter", func() {
		It("withholds builds that started strictly before it", func() {
			events, err := stream.Drain(producer.Builds(context.Background(), stream.Filter{
				Since: timePtr(time.UnixMilli(120).UTC()),
			}))
			Expect(err).NotTo(HaveOccurred())

			Expect(descriptions(events)).To(Equal([]string{"job-2 #1"}))
		})

		It("keeps builds that started exactly at it", func() {
			events, err := stream.Drain(producer.Builds(context.Background(), stream.Filter{
				Since: timePtr(time.UnixMilli(100).UTC()),
			}))
			Expect(err).NotTo(HaveOccurred())

			Expect(descriptions(events)).To(Equal([]string{"job-1 #1", "job-2 #1"}))
		})
	})

	Context("with a running filter", func() {
		It("emits only matching builds", func() {
			events, err := stream.Drain(producer.Builds(context.Background(), stream.Filter{
				Running: boolPtr(false),
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(descriptions(events)).To(Equal([]string{"job-1 #1", "job-2 #1"}))

			events, err = stream.Drain(producer.Builds(context.Background(), stream.Filter{
				Running: boolPtr(true),
			}))
			Expect(err).NotTo(HaveOccurred())

			// the only running build has no commits, so nothing comes out
			Expect(events).To(BeEmpty())
		})
	})

	Describe("the combined example", func() {
		It("emits exactly job 2's build for since=120, running=false", func() {
			events, err := stream.Drain(producer.Builds(context.Background(), stream.Filter{
				Since:   timePtr(time.UnixMilli(120).UTC()),
				Running: boolPtr(false),
			}))
			Expect(err).NotTo(HaveOccurred())

			Expect(events).To(HaveLen(1))
			Expect(events[0].Description).To(Equal("job-2 #1"))
			Expect(events[0].CommitHashes).To(Equal([]string{"def"}))
			Expect(events[0].StartTime).To(Equal(time.UnixMilli(150).UTC()))
			Expect(events[0].IsRunning).To(BeFalse())
		})
	})

	Context("when one job's discovery failed", func() {
		disaster := errors.New("nope")

		BeforeEach(func() {
			listingErr[job1Listing] = disaster
		})

		It("errors that job and still emits the healthy job's events", func() {
			events, err := stream.Drain(producer.Builds(context.Background(), stream.Filter{}))

			Expect(descriptions(events)).To(Equal([]string{"job-2 #1"}))

			var jobErr stream.JobFailedError
			Expect(errors.As(err, &jobErr)).To(BeTrue())
			Expect(jobErr.Target.Name).To(Equal("job-1"))
			Expect(errors.Is(jobErr, disaster)).To(BeTrue())
		})
	})

	Context("when a build's fetch fails mid-job", func() {
		disaster := errors.New("nope")

		BeforeEach(func() {
			listingErr[build1+"api/json"] = disaster
		})

		It("errors that job and continues with its siblings", func() {
			s := producer.Builds(context.Background(), stream.Filter{})

			_, err := s.NextEvent()
			var jobErr stream.JobFailedError
			Expect(errors.As(err, &jobErr)).To(BeTrue())
			Expect(jobErr.Target.Name).To(Equal("job-1"))

			event, err := s.NextEvent()
			Expect(err).NotTo(HaveOccurred())
			Expect(event.Description).To(Equal("job-2 #1"))

			_, err = s.NextEvent()
			Expect(err).To(Equal(io.EOF))
		})
	})

	Context("when a build document is malformed", func() {
		BeforeEach(func() {
			documents[build1+"api/json"] = `{"building": false}`
		})

		It("skips the offending build without erroring the job", func() {
			events, err := stream.Drain(producer.Builds(context.Background(), stream.Filter{}))
			Expect(err).NotTo(HaveOccurred())
			Expect(descriptions(events)).To(Equal([]string{"job-2 #1"}))
		})
	})

	Context("when the caller abandons the stream mid-way", func() {
		It("stops emitting and completes cleanly", func() {
			s := producer.Builds(context.Background(), stream.Filter{})

			event, err := s.NextEvent()
			Expect(err).NotTo(HaveOccurred())
			Expect(event.Description).To(Equal("job-1 #1"))

			Expect(s.Close()).To(Succeed())

			Eventually(func() error {
				_, err := s.NextEvent()
				return err
			}).Should(Equal(io.EOF))
		})
	})
})

var _ = Describe("EmptyStream", func() {
	It("completes immediately", func() {
		s := stream.EmptyStream()

		_, err := s.NextEvent()
		Expect(err).To(Equal(io.EOF))
		Expect(s.Close()).To(Succeed())
	})
})
