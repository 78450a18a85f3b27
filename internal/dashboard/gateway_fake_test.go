package dashboard

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/maximuthking/csv-viewer/pkg/core"
)

// previewReply is a scripted response to a blocked preview call.
type previewReply struct {
	result *core.PreviewResult
	err    error
}

// previewCall is one in-flight preview request held open by the fake until
// the test replies, which lets tests resolve requests out of order.
type previewCall struct {
	req   core.PreviewRequest
	reply chan previewReply
}

// fakeGateway is a controllable Gateway. By default every call answers
// immediately with canned data; a test can attach a script channel to hold
// preview calls open instead.
type fakeGateway struct {
	mu sync.Mutex

	datasets    []core.DatasetDescriptor
	datasetsErr error
	schema      []core.ColumnDescriptor
	schemaErr   error

	totalRows  int64
	previewErr error
	script     chan *previewCall

	locateResult core.LocateResult
	locateErr    error
	summaries    []core.ColumnSummary
	summaryErr   error
	chartResult  core.TableResult
	chartErr     error

	listCalls    atomic.Int32
	schemaCalls  atomic.Int32
	previewCalls atomic.Int32
	locateCalls  atomic.Int32
	summaryCalls atomic.Int32
	chartCalls   atomic.Int32

	lastPreviewReq core.PreviewRequest
	lastLocateReq  core.LocateRequest
	lastSummaryReq core.SummaryRequest
	lastChartReq   core.ChartDataRequest
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		datasets: []core.DatasetDescriptor{
			{Name: "a.csv", Path: "a.csv"},
			{Name: "b.csv", Path: "b.csv"},
		},
		schema: []core.ColumnDescriptor{
			{Name: "id", Dtype: "BIGINT"},
			{Name: "name", Dtype: "VARCHAR"},
			{Name: "value", Dtype: "DOUBLE"},
			{Name: "ts", Dtype: "TIMESTAMP"},
		},
		totalRows: 500,
		summaries: []core.ColumnSummary{
			{Column: "id", Dtype: "BIGINT", TotalRows: 500},
		},
		chartResult: core.TableResult{
			Rows:    []core.Row{{"bucket": "2024-01-01", "value": 1.0}},
			Columns: []string{"bucket", "value"},
		},
	}
}

func (f *fakeGateway) ListDatasets(context.Context) ([]core.DatasetDescriptor, error) {
	f.listCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.datasetsErr != nil {
		return nil, f.datasetsErr
	}
	return append([]core.DatasetDescriptor(nil), f.datasets...), nil
}

func (f *fakeGateway) GetSchema(context.Context, string) ([]core.ColumnDescriptor, error) {
	f.schemaCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.schemaErr != nil {
		return nil, f.schemaErr
	}
	return append([]core.ColumnDescriptor(nil), f.schema...), nil
}

func (f *fakeGateway) GetPreviewPage(_ context.Context, req core.PreviewRequest) (*core.PreviewResult, error) {
	f.previewCalls.Add(1)
	f.mu.Lock()
	f.lastPreviewReq = req
	script := f.script
	previewErr := f.previewErr
	totalRows := f.totalRows
	f.mu.Unlock()

	if script != nil {
		call := &previewCall{req: req, reply: make(chan previewReply)}
		script <- call
		reply := <-call.reply
		return reply.result, reply.err
	}
	if previewErr != nil {
		return nil, previewErr
	}
	return &core.PreviewResult{
		Rows:      []core.Row{{"offset": req.Offset, "limit": req.Limit}},
		Columns:   []string{"offset", "limit"},
		TotalRows: totalRows,
	}, nil
}

func (f *fakeGateway) LocateRow(_ context.Context, req core.LocateRequest) (*core.LocateResult, error) {
	f.locateCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLocateReq = req
	if f.locateErr != nil {
		return nil, f.locateErr
	}
	result := f.locateResult
	return &result, nil
}

func (f *fakeGateway) GetSummary(_ context.Context, req core.SummaryRequest) ([]core.ColumnSummary, error) {
	f.summaryCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSummaryReq = req
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	return append([]core.ColumnSummary(nil), f.summaries...), nil
}

func (f *fakeGateway) GetChartData(_ context.Context, req core.ChartDataRequest) (*core.TableResult, error) {
	f.chartCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastChartReq = req
	if f.chartErr != nil {
		return nil, f.chartErr
	}
	result := f.chartResult
	return &result, nil
}

func (f *fakeGateway) setDatasets(datasets []core.DatasetDescriptor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.datasets = datasets
}

func (f *fakeGateway) setDatasetsErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.datasetsErr = err
}

func (f *fakeGateway) setSchema(schema []core.ColumnDescriptor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schema = schema
}

func (f *fakeGateway) setSchemaErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schemaErr = err
}

func (f *fakeGateway) setPreviewErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.previewErr = err
}

func (f *fakeGateway) setScript(script chan *previewCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script = script
}

func (f *fakeGateway) setLocateResult(result core.LocateResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locateResult = result
}

func (f *fakeGateway) setSummaryErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaryErr = err
}

func (f *fakeGateway) setChartErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chartErr = err
}

func (f *fakeGateway) lastPreview() core.PreviewRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPreviewReq
}

func (f *fakeGateway) lastLocate() core.LocateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastLocateReq
}

func (f *fakeGateway) lastSummary() core.SummaryRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSummaryReq
}

func (f *fakeGateway) lastChart() core.ChartDataRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastChartReq
}

// callCounts is a snapshot of how many times each gateway operation ran.
type callCounts struct {
	list, schema, preview, locate, summary, chart int32
}

func (f *fakeGateway) counts() callCounts {
	return callCounts{
		list:    f.listCalls.Load(),
		schema:  f.schemaCalls.Load(),
		preview: f.previewCalls.Load(),
		locate:  f.locateCalls.Load(),
		summary: f.summaryCalls.Load(),
		chart:   f.chartCalls.Load(),
	}
}
