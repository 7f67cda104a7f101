package googleanalytics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/domain/repository"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const callTimeout = 15 * time.Second

// Client runs Data API reports on behalf of a service account.
type Client struct {
	endpoint   string
	httpClient *http.Client
	cache      repository.ITransientCache
	now        func() time.Time
}

func NewAnalyticsClient(endpoint string, httpClient *http.Client, cache repository.ITransientCache) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: callTimeout}
	}
	return &Client{endpoint: endpoint, httpClient: httpClient, cache: cache, now: time.Now}
}

var _ repository.IAnalyticsAPI = (*Client)(nil)

func (c *Client) service(ctx context.Context, account model.ServiceAccount, propertyID string) (*analyticsdata.Service, error) {
	if !account.Complete() {
		return nil, model.ErrConfigurationMissing
	}
	src := &serviceAccountTokenSource{
		ctx:        ctx,
		account:    account,
		propertyID: propertyID,
		httpClient: c.httpClient,
		cache:      c.cache,
		now:        c.now,
	}
	authed := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient), oauth2.ReuseTokenSource(nil, src))
	opts := []option.ClientOption{option.WithHTTPClient(authed)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	return analyticsdata.NewService(ctx, opts...)
}

// FetchReports issues the five dashboard queries in parallel. The first failure cancels the rest.
func (c *Client) FetchReports(ctx context.Context, account model.ServiceAccount, propertyID string, dates model.DateRange) (*model.RawReports, error) {
	svc, err := c.service(ctx, account, propertyID)
	if err != nil {
		return nil, err
	}

	out := &model.RawReports{}
	targets := []struct {
		req  *analyticsdata.RunReportRequest
		rows *[]model.ReportRow
	}{
		{overviewQuery(dates), &out.Overview},
		{pagesQuery(dates), &out.Pages},
		{countriesQuery(dates), &out.Countries},
		{browsersQuery(dates), &out.Browsers},
		{devicesQuery(dates), &out.Devices},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, target := range targets {
		target := target
		g.Go(func() error {
			rows, err := c.runReport(gctx, svc, propertyID, target.req)
			if err != nil {
				return err
			}
			*target.rows = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Probe reports the HTTP status of a minimal report against the property.
func (c *Client) Probe(ctx context.Context, account model.ServiceAccount, propertyID string) (int, error) {
	svc, err := c.service(ctx, account, propertyID)
	if err != nil {
		return 0, err
	}
	_, err = c.runReport(ctx, svc, propertyID, probeQuery())
	if err == nil {
		return http.StatusOK, nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code, nil
	}
	return 0, err
}

func (c *Client) runReport(ctx context.Context, svc *analyticsdata.Service, propertyID string, req *analyticsdata.RunReportRequest) ([]model.ReportRow, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := svc.Properties.RunReport("properties/"+propertyID, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("runReport: %w", err)
	}
	rows := make([]model.ReportRow, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		if r == nil {
			continue
		}
		row := model.ReportRow{}
		for _, d := range r.DimensionValues {
			row.Dimensions = append(row.Dimensions, valueOf(d))
		}
		for _, m := range r.MetricValues {
			row.Metrics = append(row.Metrics, metricOf(m))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func valueOf(d *analyticsdata.DimensionValue) string {
	if d == nil {
		return ""
	}
	return d.Value
}

func metricOf(m *analyticsdata.MetricValue) string {
	if m == nil {
		return ""
	}
	return m.Value
}
