package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"eventledger/models"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
)

const (
	esIndex = "eventledger-transactions"
	esFlush = 2048
)

// ElasticsearchV8 通过 bulk 接口把交易写入 Elasticsearch，文档 id 即交易 id
type ElasticsearchV8 struct {
	addresses []string
	index     string
}

func NewElasticsearchV8(urls ...string) *ElasticsearchV8 {
	if len(urls) == 0 {
		urls = []string{"http://localhost:9200"}
	}
	return &ElasticsearchV8{addresses: urls, index: esIndex}
}

func (e *ElasticsearchV8) client() (*elasticsearch.Client, error) {
	retryBackoff := backoff.NewExponentialBackOff()
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: e.addresses,
		// 限流和网关错误时重试
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},
		MaxRetries: 5,
	})
}

func (e *ElasticsearchV8) Write(txs []*models.Transaction) error {
	es, err := e.client()
	if err != nil {
		return err
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         e.index,
		FlushBytes:    esFlush,
		Client:        es,
		NumWorkers:    4,
		FlushInterval: 10 * time.Second,
	})
	if err != nil {
		return err
	}

	// 索引已存在时创建会失败，忽略即可
	if res, err := es.Indices.Create(e.index); err != nil {
		log.Printf("创建索引 %s 失败: %v", e.index, err)
	} else {
		res.Body.Close()
	}

	ctx := context.Background()
	for _, t := range txs {
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: t.ID,
			Body:       bytes.NewReader(data),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					log.Printf("写入交易 %s 失败: %v", item.DocumentID, err)
				} else {
					log.Printf("写入交易 %s 失败: %s %s", item.DocumentID, res.Error.Type, res.Error.Reason)
				}
			},
		})
		if err != nil {
			return err
		}
	}

	if err := bi.Close(ctx); err != nil {
		return err
	}

	stats := bi.Stats()
	if stats.NumFailed > 0 {
		log.Printf("已写入 %d 条交易，失败 %d 条", stats.NumFlushed, stats.NumFailed)
		return fmt.Errorf("写入 Elasticsearch 失败 %d 条", stats.NumFailed)
	}
	log.Printf("已写入 %d 条交易到 %s", stats.NumFlushed, e.index)
	return nil
}
