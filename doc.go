// Package vnav wires a declarative route table into a running application.
//
// An App is built from a configuration file. It registers the inline
// component templates, connects lazy routes to their import hooks (inline
// templates or an S3 bucket), picks a session store (memory or Redis) and
// serves pages and live sessions over HTTP:
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app, err := vnav.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer app.Close()
//	app.Run(ctx)
//
// Components can also be registered in code before the app starts:
//
//	reg := component.NewRegistry()
//	reg.Register("user-card", userCardFactory)
//	app, err := vnav.New(cfg, vnav.WithRegistry(reg))
package vnav
