// Command mediaprobe inspects a media file with ffprobe and prints the
// duration and size the server would record for it. Useful for checking
// an upload candidate before handing it to the API.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"livecast/internal/infrastructure/encoder"
)

func main() {
	ffprobePath := flag.String("ffprobe", "ffprobe", "path to the ffprobe binary")
	timeout := flag.Duration("timeout", 10*time.Second, "probe timeout")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <media-file>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	prober := encoder.NewProber(*ffprobePath, *timeout, zap.NewNop().Sugar())

	info, err := prober.Probe(context.Background(), flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "probe failed: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
