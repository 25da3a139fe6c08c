// Package factory builds pluggable modules from configuration. A module is
// a type name plus a raw settings map, as found under metrics.sinks:
//
//	sinks:
//	  - type: influx
//	    conf:
//	      url: http://influx:8086
//	      bucket: carheater
//
// Factories decode the map with Decode and return the implementation:
//
//	reg := factory.NewRegistry[metrics.MetricsSink]()
//	_ = reg.Register("influx", func(conf map[string]any) (metrics.MetricsSink, error) {
//	    var c InfluxConfig
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return NewInfluxSink(c), nil
//	})
package factory
