package dumpfiles

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/diwise/wikibase-datamodel/pkg/wikibase/datamodel"
	wberrors "github.com/diwise/wikibase-datamodel/pkg/wikibase/errors"
)

// EntityDocumentHandler is called once for every entity in a dump. Returning an error
// stops the processing.
type EntityDocumentHandler func(ctx context.Context, e *datamodel.EntityDocument) error

type ProcessingResult struct {
	Processed int64
	Failed    int64
}

// Processor reads JSON dumps, where every line between the opening and closing bracket
// holds one entity document followed by a comma
type Processor struct {
	deserializer *datamodel.Deserializer
	workers      int
}

func NewProcessor(deserializer *datamodel.Deserializer, workers int) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{deserializer: deserializer, workers: workers}
}

type dumpLine struct {
	number int
	data   []byte
}

// Process prepares the dump file and hands every entity document in it to the handler.
// Documents are decoded concurrently, so the handler sees them in the order decoding
// finished. The handler is never called concurrently. Lines that cannot be decoded are
// logged and counted as failed.
func (p *Processor) Process(ctx context.Context, df DumpFile, handler EntityDocumentHandler) (result ProcessingResult, err error) {
	ctx, span := tracer.Start(ctx, "process-dump-file",
		trace.WithAttributes(attribute.String(TraceAttributeDumpFile, df.String())),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	log := logging.GetFromContext(ctx).With("dumpfile", df.String())

	if df.DumpContentType() != JSON {
		err = wberrors.NewInvalidArgumentError(fmt.Sprintf("%s is not a JSON dump", df.String()))
		return
	}

	if err = df.PrepareDumpFile(ctx); err != nil {
		return
	}

	reader, err := df.DumpFileReader(ctx)
	if err != nil {
		return
	}
	defer reader.Close()

	var failed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	lines := make(chan dumpLine, p.workers*2)
	documents := make(chan *datamodel.EntityDocument, p.workers*2)

	g.Go(func() error {
		defer close(lines)

		for number := 1; ; number++ {
			data, readErr := reader.ReadBytes('\n')

			data = bytes.TrimSpace(data)
			data = bytes.TrimSuffix(data, []byte(","))

			if len(data) > 0 && !bytes.Equal(data, []byte("[")) && !bytes.Equal(data, []byte("]")) {
				select {
				case lines <- dumpLine{number: number, data: data}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			if readErr == io.EOF {
				return nil
			}
			if readErr != nil {
				return wberrors.NewIOError("failed to read dump file", errors.Wrapf(readErr, "line %d", number))
			}
		}
	})

	g.Go(func() error {
		defer close(documents)

		decoders, decodeCtx := errgroup.WithContext(ctx)
		for range p.workers {
			decoders.Go(func() error {
				for line := range lines {
					e, decodeErr := p.deserializer.DeserializeEntityDocument(line.data)
					if decodeErr != nil {
						failed.Add(1)
						log.Warn("failed to deserialize entity document", "line", line.number, "err", decodeErr.Error())
						continue
					}

					select {
					case documents <- e:
					case <-decodeCtx.Done():
						return decodeCtx.Err()
					}
				}
				return nil
			})
		}

		return decoders.Wait()
	})

	g.Go(func() error {
		for e := range documents {
			if handlerErr := handler(ctx, e); handlerErr != nil {
				return fmt.Errorf("handler failed for %s: %w", e.ID().ID(), handlerErr)
			}
			result.Processed++
		}
		return nil
	})

	err = g.Wait()
	result.Failed = failed.Load()

	if err != nil {
		log.Error("dump processing stopped", "err", err.Error(), "processed", result.Processed, "failed", result.Failed)
		return
	}

	log.Info("dump processed", "processed", result.Processed, "failed", result.Failed)

	return
}
