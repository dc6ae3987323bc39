package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirk91/stats"
	"github.com/pkg/errors"
	"github.com/shafreeck/configo"
	"github.com/shafreeck/retry"
	"k8s.io/klog"

	"github.com/kirk91/respclient/client"
	"github.com/kirk91/respclient/resp"
)

var (
	confPath string
	addr     string
	repeat   int
	interval time.Duration
)

func init() {
	klog.InitFlags(nil)
	flag.StringVar(&confPath, "c", "", "The config file path, defaults are used when empty")
	flag.StringVar(&addr, "addr", "", "The address of redis, overrides the config file")
	flag.IntVar(&repeat, "r", 1, "Execute the command N times")
	flag.DurationVar(&interval, "i", 0, "Interval between repeated commands")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] command [arg ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
}

func loadConfig() (*client.Config, error) {
	cfg := client.DefaultConfig()
	if confPath != "" {
		cfg = &client.Config{}
		if err := configo.Load(confPath, cfg); err != nil {
			return nil, errors.Wrapf(err, "load config %s", confPath)
		}
	}
	if addr != "" {
		cfg.Addr = addr
	}
	return cfg, nil
}

// dial keeps retrying until cfg.DialRetryTimeout elapses.
func dial(ctx context.Context, cfg *client.Config, scope *stats.Scope) (*client.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.DialRetryTimeout)
	defer cancel()

	var (
		c       *client.Client
		lastErr error
	)
	err := retry.Ensure(ctx, func() error {
		var err error
		c, err = client.Dial(cfg, client.WithStatsScope(scope))
		if err != nil {
			lastErr = err
			klog.Warningf("%v, will retry...", err)
			return retry.Retriable(err)
		}
		return nil
	})
	if err != nil {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, err
	}
	return c, nil
}

func run(ctx context.Context, c *client.Client, cmd *resp.Command) error {
	for i := 0; i < repeat; i++ {
		if i > 0 && interval > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(interval):
			}
		}
		v, err := c.Do(cmd)
		if err != nil {
			return err
		}
		fmt.Println(v)
		if v.IsError() {
			return client.ServerError(v.Text)
		}
	}
	return nil
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig()
	if err != nil {
		klog.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := stats.NewStore(stats.NewStoreOption())
	go store.FlushingLoop(ctx)

	c, err := dial(ctx, cfg, store.CreateScope("respcli"))
	if err != nil {
		klog.Fatal(err)
	}
	defer c.Close()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigc
		klog.V(4).Infof("signal received: %s", s)
		cancel()
	}()

	err = run(ctx, c, resp.NewStringCommand(args[0], args[1:]...))
	klog.V(2).Infof("commands handled: %d", c.CommandsHandled())
	if err != nil {
		if _, ok := err.(client.ServerError); !ok {
			klog.Error(err)
		}
		klog.Flush()
		os.Exit(1)
	}
}
