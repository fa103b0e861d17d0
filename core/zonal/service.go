// Package zonal serves the zonal campus lead dashboard: the zone leaderboard
// and the listings of the zone's districts, colleges and students.
package zonal

import (
	"context"
	"errors"

	"github.com/trezcool/campusdash/core"
	"github.com/trezcool/campusdash/core/karma"
)

// ErrNoCollegeLink is returned when the caller is not linked to a college with a district in a zone.
var ErrNoCollegeLink = errors.New("no college linked to this user")

const topDistrictsCount = 3

type (
	Repository interface {
		GetScope(ctx context.Context, userID string) (Scope, error)

		// ZoneScores sums the karma of every zone's members, ordered by zone id.
		ZoneScores(ctx context.Context) ([]karma.Score, error)
		CountZoneMembers(ctx context.Context, zoneID string) (int, error)
		CountActiveMembers(ctx context.Context, zoneID string, w karma.Window) (int, error)

		// DistrictScores sums the karma of the verified members of every district of the zone, ordered by district id.
		DistrictScores(ctx context.Context, zoneID string) ([]karma.Score, error)
		GetDistricts(ctx context.Context, ids ...string) ([]District, error)

		DistrictColleges(ctx context.Context, districtID string) ([]CollegeLevels, error)
		// LevelCounts returns, per organisation id, the student count of every level.
		LevelCounts(ctx context.Context, orgIDs ...string) (map[string][]LevelCount, error)

		QueryStudents(ctx context.Context, zoneID string, pq *core.PageQuery) ([]Student, core.Pagination, error)
		// UserScores returns the non-null total karma of every user, highest first.
		UserScores(ctx context.Context) ([]karma.Score, error)

		QueryColleges(ctx context.Context, zoneID string, pq *core.PageQuery) ([]College, core.Pagination, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Scope(ctx context.Context, userID string) (Scope, error) {
	return svc.repo.GetScope(ctx, userID)
}

// Details returns the rank, karma and membership of the caller's zone.
func (svc *Service) Details(ctx context.Context, userID string) (Details, error) {
	scope, err := svc.repo.GetScope(ctx, userID)
	if err != nil {
		return Details{}, err
	}

	scores, err := svc.repo.ZoneScores(ctx)
	if err != nil {
		return Details{}, err
	}
	det := Details{
		Zone:      scope.ZoneName,
		ZonalLead: scope.FullName,
		Rank:      karma.Rank(scores).Ptr(scope.ZoneID),
	}
	for _, s := range scores {
		if s.Key == scope.ZoneID {
			det.Karma = s.Karma
		}
	}

	if det.TotalMembers, err = svc.repo.CountZoneMembers(ctx, scope.ZoneID); err != nil {
		return Details{}, err
	}
	window := karma.MonthWindow(core.Now())
	if det.ActiveMembers, err = svc.repo.CountActiveMembers(ctx, scope.ZoneID, window); err != nil {
		return Details{}, err
	}
	return det, nil
}

// TopDistricts returns the three best districts of the caller's zone, best first.
func (svc *Service) TopDistricts(ctx context.Context, userID string) ([]District, error) {
	scope, err := svc.repo.GetScope(ctx, userID)
	if err != nil {
		return nil, err
	}
	scores, err := svc.repo.DistrictScores(ctx, scope.ZoneID)
	if err != nil {
		return nil, err
	}
	ranks := karma.Rank(scores)
	top := ranks.Top(topDistrictsCount)
	if len(top) == 0 {
		return []District{}, nil
	}

	dists, err := svc.repo.GetDistricts(ctx, top...)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]District, len(dists))
	for _, d := range dists {
		byID[d.ID] = d
	}
	res := make([]District, 0, len(top))
	for _, id := range top {
		d, ok := byID[id]
		if !ok {
			continue // districtless organisations
		}
		d.Rank, _ = ranks.Of(id)
		res = append(res, d)
	}
	return res, nil
}

// StudentLevels returns the student count per level of every college in the caller's district.
func (svc *Service) StudentLevels(ctx context.Context, userID string) ([]CollegeLevels, error) {
	scope, err := svc.repo.GetScope(ctx, userID)
	if err != nil {
		return nil, err
	}
	colleges, err := svc.repo.DistrictColleges(ctx, scope.DistrictID)
	if err != nil {
		return nil, err
	}
	if len(colleges) == 0 {
		return colleges, nil
	}

	ids := make([]string, len(colleges))
	for i, c := range colleges {
		ids[i] = c.OrgID
	}
	counts, err := svc.repo.LevelCounts(ctx, ids...)
	if err != nil {
		return nil, err
	}
	for i := range colleges {
		colleges[i].Level = counts[colleges[i].OrgID]
		if colleges[i].Level == nil {
			colleges[i].Level = []LevelCount{}
		}
	}
	return colleges, nil
}

// Students lists the members of the colleges of the caller's zone.
func (svc *Service) Students(ctx context.Context, userID string, pq *core.PageQuery) ([]Student, core.Pagination, error) {
	scope, err := svc.repo.GetScope(ctx, userID)
	if err != nil {
		return nil, core.Pagination{}, err
	}
	students, pagination, err := svc.repo.QueryStudents(ctx, scope.ZoneID, pq)
	if err != nil {
		return nil, core.Pagination{}, err
	}
	if err = svc.rankStudents(ctx, students); err != nil {
		return nil, core.Pagination{}, err
	}
	return students, pagination, nil
}

// ExportStudents is Students without paging.
func (svc *Service) ExportStudents(ctx context.Context, userID string, pq core.PageQuery) ([]Student, error) {
	pq.PerPage = core.NoPaging
	students, _, err := svc.Students(ctx, userID, &pq)
	return students, err
}

// rankStudents sets the global leaderboard rank of students.
// Students without karma are ranked 0.
func (svc *Service) rankStudents(ctx context.Context, students []Student) error {
	if len(students) == 0 {
		return nil
	}
	scores, err := svc.repo.UserScores(ctx)
	if err != nil {
		return err
	}
	ranks := karma.Rank(scores)
	for i := range students {
		if students[i].Karma == 0 {
			zero := 0
			students[i].Rank = &zero
			continue
		}
		students[i].Rank = ranks.Ptr(students[i].UserID)
	}
	return nil
}

// Colleges lists the colleges of the caller's zone with their campus lead.
func (svc *Service) Colleges(ctx context.Context, userID string, pq *core.PageQuery) ([]College, core.Pagination, error) {
	scope, err := svc.repo.GetScope(ctx, userID)
	if err != nil {
		return nil, core.Pagination{}, err
	}
	return svc.repo.QueryColleges(ctx, scope.ZoneID, pq)
}

// ExportColleges is Colleges without paging.
func (svc *Service) ExportColleges(ctx context.Context, userID string, pq core.PageQuery) ([]College, error) {
	pq.PerPage = core.NoPaging
	colleges, _, err := svc.Colleges(ctx, userID, &pq)
	return colleges, err
}
