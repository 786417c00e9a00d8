package usecase

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"roadrescue/internal/domain/entity"
	"roadrescue/internal/domain/repository"
	"roadrescue/pkg/errors"
)

const (
	reportDateLayout  = "2006-01-02"
	defaultReportDays = 30
	reportTopN        = 5
)

type ReportUseCase struct {
	userRepo     repository.UserRepository
	requestRepo  repository.RescueRequestRepository
	categoryRepo repository.CategoryRepository
	loc          *time.Location
	now          func() time.Time
}

func NewReportUseCase(
	userRepo repository.UserRepository,
	requestRepo repository.RescueRequestRepository,
	categoryRepo repository.CategoryRepository,
	loc *time.Location,
) *ReportUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportUseCase{
		userRepo:     userRepo,
		requestRepo:  requestRepo,
		categoryRepo: categoryRepo,
		loc:          loc,
		now:          time.Now,
	}
}

type ReportRange struct {
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	ToExclusive time.Time `json:"toExclusive"`
}

type CompanyCounts struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

type UserCounts struct {
	Total     int           `json:"total"`
	Customers int           `json:"customers"`
	Admins    int           `json:"admins"`
	Companies CompanyCounts `json:"companies"`
}

type EtaStats struct {
	AvgEtaMinutes *float64 `json:"avgEtaMinutes"`
	Count         int      `json:"count"`
}

type SatisfactionStats struct {
	RatedCount         int            `json:"ratedCount"`
	AvgRating          *float64       `json:"avgRating"`
	RatingDistribution map[string]int `json:"ratingDistribution"`
}

type CategoryVolume struct {
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName,omitempty"`
	Count        int    `json:"count"`
}

type CompanyVolume struct {
	CompanyID     string   `json:"companyId"`
	CompanyName   string   `json:"companyName,omitempty"`
	Email         string   `json:"email,omitempty"`
	TotalAssigned int      `json:"totalAssigned"`
	Responded     int      `json:"responded"`
	Completed     int      `json:"completed"`
	Cancelled     int      `json:"cancelled"`
	AvgRating     *float64 `json:"avgRating"`
}

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type RequestStats struct {
	TotalInRange   int               `json:"totalInRange"`
	ByStatus       map[string]int    `json:"byStatus"`
	RespondedCount int               `json:"respondedCount"`
	ResponseRate   float64           `json:"responseRate"`
	CompletionRate float64           `json:"completionRate"`
	CancelRate     float64           `json:"cancelRate"`
	Eta            EtaStats          `json:"eta"`
	Satisfaction   SatisfactionStats `json:"satisfaction"`
	TopCategories  []CategoryVolume  `json:"topCategories"`
	TopCompanies   []CompanyVolume   `json:"topCompanies"`
	RequestsPerDay []DayCount        `json:"requestsPerDay"`
}

type ReportOverview struct {
	Range    ReportRange  `json:"range"`
	Users    UserCounts   `json:"users"`
	Requests RequestStats `json:"requests"`
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ParseReportRange resolves optional YYYY-MM-DD bounds. The default window is
// the 30 days before today; the end day is included.
func ParseReportRange(fromStr, toStr string, now time.Time, loc *time.Location) (ReportRange, error) {
	from := startOfDay(now.AddDate(0, 0, -defaultReportDays), loc)
	to := startOfDay(now, loc)

	if s := strings.TrimSpace(fromStr); s != "" {
		t, err := time.ParseInLocation(reportDateLayout, s, loc)
		if err != nil {
			return ReportRange{}, errors.BadRequest("from must be YYYY-MM-DD", err)
		}
		from = t
	}
	if s := strings.TrimSpace(toStr); s != "" {
		t, err := time.ParseInLocation(reportDateLayout, s, loc)
		if err != nil {
			return ReportRange{}, errors.BadRequest("to must be YYYY-MM-DD", err)
		}
		to = t
	}

	return ReportRange{From: from, To: to, ToExclusive: to.AddDate(0, 0, 1)}, nil
}

// ResponseRateApprox is the share of requests that are no longer PENDING.
// It is an approximation of how often companies respond: it ignores how
// long the response took, and a request cancelled while PENDING counts as
// responded because it left that state.
func ResponseRateApprox(total, pending int) float64 {
	if total == 0 {
		return 0
	}
	return float64(total-pending) / float64(total)
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

func avg(sum float64, n int) *float64 {
	if n == 0 {
		return nil
	}
	v := sum / float64(n)
	return &v
}

func (uc *ReportUseCase) Overview(ctx context.Context, fromStr, toStr string) (*ReportOverview, error) {
	rng, err := ParseReportRange(fromStr, toStr, uc.now(), uc.loc)
	if err != nil {
		return nil, err
	}

	users, err := uc.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	requests, err := uc.requestRepo.List(ctx, repository.RequestFilter{
		CreatedFrom: rng.From,
		CreatedTo:   rng.ToExclusive,
		OrderBy:     repository.OrderByCreatedAt,
	})
	if err != nil {
		return nil, err
	}
	categories, err := uc.categoryRepo.List(ctx, false)
	if err != nil {
		return nil, err
	}

	report := BuildReport(rng, users, requests, categories, uc.loc)
	return &report, nil
}

// BuildReport aggregates users and the requests created inside rng.
func BuildReport(
	rng ReportRange,
	users []*entity.User,
	requests []*entity.RescueRequest,
	categories []*entity.ServiceCategory,
	loc *time.Location,
) ReportOverview {
	out := ReportOverview{Range: rng}
	out.Users.Companies.ByStatus = map[string]int{}
	usersByID := make(map[string]*entity.User, len(users))

	for _, u := range users {
		usersByID[u.ID] = u
		out.Users.Total++
		switch u.Role {
		case entity.RoleCustomer:
			out.Users.Customers++
		case entity.RoleAdmin:
			out.Users.Admins++
		case entity.RoleCompany:
			out.Users.Companies.Total++
			status := "UNKNOWN"
			if u.Company != nil && u.Company.Status != "" {
				status = string(u.Company.Status)
			}
			out.Users.Companies.ByStatus[status]++
		}
	}

	categoryNames := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	stats := RequestStats{
		ByStatus: map[string]int{},
		Satisfaction: SatisfactionStats{
			RatingDistribution: map[string]int{},
		},
	}
	var etaSum, ratingSum float64
	perCategory := map[string]int{}
	perCompany := map[string]*CompanyVolume{}
	companyRatings := map[string][2]float64{}
	perDay := map[string]int{}

	for _, r := range requests {
		stats.TotalInRange++
		stats.ByStatus[string(r.Status)]++

		if r.EtaMinutes != nil {
			etaSum += float64(*r.EtaMinutes)
			stats.Eta.Count++
		}
		if r.CustomerRating != nil {
			ratingSum += float64(*r.CustomerRating)
			stats.Satisfaction.RatedCount++
			stats.Satisfaction.RatingDistribution[strconv.Itoa(*r.CustomerRating)]++
		}

		perCategory[r.CategoryID]++

		cv, ok := perCompany[r.AssignedCompanyID]
		if !ok {
			cv = &CompanyVolume{CompanyID: r.AssignedCompanyID}
			perCompany[r.AssignedCompanyID] = cv
		}
		cv.TotalAssigned++
		if r.Status != entity.StatusPending {
			cv.Responded++
		}
		switch r.Status {
		case entity.StatusCompleted:
			cv.Completed++
		case entity.StatusCancelled:
			cv.Cancelled++
		}
		if r.CustomerRating != nil {
			acc := companyRatings[r.AssignedCompanyID]
			acc[0] += float64(*r.CustomerRating)
			acc[1]++
			companyRatings[r.AssignedCompanyID] = acc
		}

		perDay[r.CreatedAt.In(loc).Format(reportDateLayout)]++
	}

	pending := stats.ByStatus[string(entity.StatusPending)]
	stats.RespondedCount = stats.TotalInRange - pending
	stats.ResponseRate = ResponseRateApprox(stats.TotalInRange, pending)
	stats.CompletionRate = ratio(stats.ByStatus[string(entity.StatusCompleted)], stats.TotalInRange)
	stats.CancelRate = ratio(stats.ByStatus[string(entity.StatusCancelled)], stats.TotalInRange)
	stats.Eta.AvgEtaMinutes = avg(etaSum, stats.Eta.Count)
	stats.Satisfaction.AvgRating = avg(ratingSum, stats.Satisfaction.RatedCount)

	stats.TopCategories = make([]CategoryVolume, 0, len(perCategory))
	for id, n := range perCategory {
		stats.TopCategories = append(stats.TopCategories, CategoryVolume{CategoryID: id, CategoryName: categoryNames[id], Count: n})
	}
	sort.Slice(stats.TopCategories, func(i, j int) bool {
		a, b := stats.TopCategories[i], stats.TopCategories[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.CategoryID < b.CategoryID
	})
	if len(stats.TopCategories) > reportTopN {
		stats.TopCategories = stats.TopCategories[:reportTopN]
	}

	stats.TopCompanies = make([]CompanyVolume, 0, len(perCompany))
	for id, cv := range perCompany {
		if acc, ok := companyRatings[id]; ok {
			cv.AvgRating = avg(acc[0], int(acc[1]))
		}
		if u, ok := usersByID[id]; ok {
			cv.CompanyName = u.DisplayName()
			cv.Email = u.Email
		}
		stats.TopCompanies = append(stats.TopCompanies, *cv)
	}
	sort.Slice(stats.TopCompanies, func(i, j int) bool {
		a, b := stats.TopCompanies[i], stats.TopCompanies[j]
		if a.TotalAssigned != b.TotalAssigned {
			return a.TotalAssigned > b.TotalAssigned
		}
		return a.CompanyID < b.CompanyID
	})
	if len(stats.TopCompanies) > reportTopN {
		stats.TopCompanies = stats.TopCompanies[:reportTopN]
	}

	stats.RequestsPerDay = make([]DayCount, 0, len(perDay))
	for day, n := range perDay {
		stats.RequestsPerDay = append(stats.RequestsPerDay, DayCount{Date: day, Count: n})
	}
	sort.Slice(stats.RequestsPerDay, func(i, j int) bool {
		return stats.RequestsPerDay[i].Date < stats.RequestsPerDay[j].Date
	})

	out.Requests = stats
	return out
}
