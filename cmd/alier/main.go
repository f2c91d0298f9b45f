// Command alier runs an embeddable HTTP application built on the
// router, entity, and auth packages, in the teacher's single-file
// main style (cmd/skoap_main.go.ref) rather than skipper's full
// clustered proxy wiring.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/suredesigns/alier-node/auth"
	"github.com/suredesigns/alier-node/config"
	"github.com/suredesigns/alier-node/credential"
	"github.com/suredesigns/alier-node/entity"
	"github.com/suredesigns/alier-node/internal/alog"
	"github.com/suredesigns/alier-node/pattern"
	"github.com/suredesigns/alier-node/request"
	"github.com/suredesigns/alier-node/router"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	alog.Init(alog.Options{
		AccessLogJSONEnabled: cfg.AccessLogJSON,
	})
	if cfg.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	rt := router.New(cfg.RouterOptions())
	rt.Logger = alog.Default

	lookup := credential.NewStaticLookup()
	lookup.Set("users", "basic", "alice", "wonderland")

	digest, err := auth.NewDigest(auth.QopAuth, []byte("change-me"), lookup,
		auth.WithRealm("alier"), auth.WithCredentialsTable("users", "basic"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := registerHello(rt); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := registerSecure(rt, digest); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	handler := alog.Middleware(rt, alog.AccessLogOptions{StripQuery: cfg.AccessLogStripQuery})

	logrus.Infof("alier listening on %s", cfg.Address)
	if err := http.ListenAndServe(cfg.Address, handler); err != nil {
		logrus.Errorf("alier stopped: %v", err)
		os.Exit(1)
	}
}

func registerHello(rt *router.Router) error {
	p, err := pattern.Parse("/hello", true)
	if err != nil {
		return err
	}
	api, err := entity.NewWebApi(p, nil)
	if err != nil {
		return err
	}
	api.Get(func(ctx context.Context, req *request.Descriptor, params map[string]any) (map[string]any, error) {
		return map[string]any{"message": "hello"}, nil
	})
	return rt.Enable(p, api)
}

func registerSecure(rt *router.Router, digest *auth.Digest) error {
	p, err := pattern.Parse("/secure/whoami", true)
	if err != nil {
		return err
	}
	api, err := entity.NewWebApi(p, []entity.AuthBinding{{Scheme: "digest", Protocol: digest}})
	if err != nil {
		return err
	}
	api.Get(func(ctx context.Context, req *request.Descriptor, params map[string]any) (map[string]any, error) {
		return map[string]any{"authenticated": true}, nil
	})
	return rt.Enable(p, api)
}
