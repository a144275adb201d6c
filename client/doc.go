// Package client performs request descriptors.
//
// # Building a Maker
//
// Use [Build] to create a [Maker] with functional options:
//
//	jar, _ := cookie.NewJar()
//	m, err := client.Build(
//		client.WithCookieStore(jar),
//		client.WithLogger(logger),
//	)
//
// # Performing Requests
//
// Describe the call with a [request.Descriptor] and run it. The calling
// goroutine blocks until the transport completes:
//
//	d := request.New(cfg, request.Public("/items"))
//	d.Parameters = request.Parameters{"q": "x"}
//	resp, err := m.Perform(ctx, d)
//
// [PerformAs] decodes the body according to an [Expectation]:
//
//	item, err := client.PerformAs(ctx, m, d, client.ExpectJSON[Item]())
//	raw, err := client.PerformAs(ctx, m, d, client.ExpectRaw())
//	_, err = client.PerformAs(ctx, m, d, client.ExpectVoid())
//
// # Errors
//
// Every failure is an [errs.Error]; match its kind with errors.Is:
//
//	if errors.Is(err, errs.ErrUnauthorized) { ... }
package client
