// Package usecase はマーケットデータのポーリングと時系列整形のビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"time"

	"market_tracker/internal/feature/market/domain/entity"
)

// ErrSuperseded は、より新しいリクエストが開始されたため結果が破棄されたことを示します。
var ErrSuperseded = errors.New("result superseded by a newer request")

// MarketRepository はアセットクラスごとの外部API実装を抽象化します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type MarketRepository interface {
	// Class はこの実装が担当するアセットクラスを返します。
	Class() entity.AssetClass
	// FetchQuotes は指定された全銘柄の現在値を取得します。
	FetchQuotes(ctx context.Context, ids []string) ([]entity.AssetQuote, error)
	// FetchSeries は1銘柄の価格履歴を、MapRangeで変換済みのパラメータで取得します。
	FetchSeries(ctx context.Context, id, param string) (entity.Series, error)
	// MapRange は時間範囲を外部APIのクエリパラメータに変換します。
	MapRange(r entity.TimeRange) string
}

// Scheduler は定期実行ジョブを登録するインターフェースです。
// 返される cancel を呼んだ後、job は二度と呼ばれません。
type Scheduler interface {
	Every(interval time.Duration, job func()) (cancel func(), err error)
}
