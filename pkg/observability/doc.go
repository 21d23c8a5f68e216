/*
Package observability turns engine lifecycle hooks into Prometheus metrics and structured
logs.

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	hooks := metrics.Hooks().Merge(observability.LoggingHooks(logger))
	stack, _ := backstack.New("home", backstack.WithLifecycleHooks[string](hooks))
*/
package observability
