package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/peterbourgon/ff"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func main() {
	fs := flag.NewFlagSet("peekaboo-client", flag.ExitOnError)
	var (
		addr        = fs.String("addr", "http://127.0.0.1:2829", "peekaboo server address")
		id          = fs.String("id", "client", "visitor id")
		kind        = fs.String("t", "", "fractal kind (mandelbrot, julia), empty for a pixel")
		requests    = fs.Int("n", 100, "number of requests")
		concurrency = fs.Int("c", 4, "concurrent requests")
		timeout     = fs.Duration("timeout", 10*time.Second, "request timeout")
	)
	logger := logrus.New()
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("PEEKABOO_CLIENT")); err != nil {
		logger.WithError(err).Fatal("error parsing configuration")
	}

	client := &http.Client{Timeout: *timeout}
	target := peekURL(*addr, *id, *kind)

	jobs := make(chan int)
	wg := sync.WaitGroup{}
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				if err := MakeCall(context.Background(), client, target); err != nil {
					logger.WithError(err).Error("call failed")
				}
			}
		}()
	}
	for i := 0; i < *requests; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	status, err := fetch(context.Background(), client, infoURL(*addr, *id))
	if err != nil {
		logger.WithError(err).Fatal("could not fetch visitor info")
	}
	fmt.Println("info > ", status)
}

// peekURL builds the image url of a visitor, escaping the id so it stays a
// single path segment.
func peekURL(addr, id, kind string) string {
	u := addr + "/peek/" + url.PathEscape(id)
	if kind != "" {
		u += "?" + url.Values{"t": {kind}}.Encode()
	}
	return u
}

func infoURL(addr, id string) string {
	return addr + "/peek/" + url.PathEscape(id) + "/info"
}

func MakeCall(ctx context.Context, client *http.Client, url string) error {
	defer func(begin time.Time) {
		fmt.Println("took > ", time.Since(begin))
	}(time.Now())

	_, err := fetch(ctx, client, url)
	return err
}

func fetch(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(err, "error building request")
	}

	res, err := client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "error calling server")
	}
	defer res.Body.Close()

	if _, err := io.Copy(ioutil.Discard, res.Body); err != nil {
		return "", errors.Wrap(err, "error reading response")
	}

	if res.StatusCode != http.StatusOK {
		return res.Status, errors.Errorf("unexpected status %s", res.Status)
	}

	return res.Status, nil
}
