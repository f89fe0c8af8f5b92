// Package oem7 talks to NovAtel OEM7-class GPS receivers over raw
// Linux serial links: it configures the line discipline, issues ASCII
// initialization commands, discovers an unknown device path and baud
// rate by probing, and streams decoded sentences to a consumer.
//
// # Basic Usage
//
// Open a known device and play the standard initialization sequence:
//
//	port, err := oem7.Open("/dev/ttyUSB1", oem7.WithBaudRate(115200))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	proto := oem7.NewProtocol(port, logger)
//	err = proto.SendSequence(oem7.DefaultInitCommands(), 1500*time.Millisecond)
//
// # Discovery
//
// When the device path or baud rate is unknown, scan for it:
//
//	d := oem7.NewDiscoverer(oem7.DefaultConfig(), logger)
//	res, err := d.Discover()
//	if errors.Is(err, oem7.ErrNoDeviceDetected) {
//	    // receiver absent; an expected outcome, not a fault
//	}
//
// A matched ProbeResult hands its opened Port to the caller, which
// then owns it exclusively.
//
// # Streaming
//
//	sess := oem7.NewSession(res.Port, func(line string) {
//	    fmt.Println(line)
//	}, true, logger)
//	err = sess.Run(ctx) // closes the port before returning
//
// Every blocking point in the package is a short readiness poll
// nested inside an overall deadline; no operation performs an
// unbounded blocking read.
package oem7
