package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dutchcoders/go-clamd"

	"resumeHub/internal/metrics"
)

// ErrInfected 表示 clamd 检出病毒特征。
var ErrInfected = errors.New("malicious file detected")

type streamScanner interface {
	ScanStream(r io.Reader, abort chan bool) (chan *clamd.ScanResult, error)
}

// Scanner 在文件入库前通过 clamd 流式扫描。
type Scanner struct {
	client streamScanner
}

// NewScanner 返回连接 addr 处 clamd 的 Scanner（tcp://host:port 或 unix socket 路径）。
func NewScanner(addr string) *Scanner {
	return &Scanner{client: clamd.NewClamd(addr)}
}

// Scan 读取 r 直至结束。检出病毒返回 ErrInfected，
// clamd 无法连接或返回错误时返回包装后的错误。
func (s *Scanner) Scan(ctx context.Context, r io.Reader) (err error) {
	start := time.Now()
	defer func() {
		if errors.Is(err, ErrInfected) {
			metrics.ObserveUpstream("clamd", "scan", start, nil)
			return
		}
		metrics.ObserveUpstream("clamd", "scan", start, err)
	}()

	abort := make(chan bool)
	defer close(abort)

	results, err := s.client.ScanStream(r, abort)
	if err != nil {
		return fmt.Errorf("scan stream: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case result, ok := <-results:
			if !ok {
				return nil
			}
			switch result.Status {
			case clamd.RES_OK:
			case clamd.RES_FOUND:
				return fmt.Errorf("%w: %s", ErrInfected, result.Description)
			default:
				return fmt.Errorf("clamd %s: %s", result.Status, result.Description)
			}
		}
	}
}
