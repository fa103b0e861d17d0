package zonal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/campusdash/core"
	"github.com/trezcool/campusdash/core/karma"
)

type fakeRepo struct {
	scopes         map[string]Scope
	zoneScores     []karma.Score
	members        int
	active         int
	activeWindow   karma.Window
	districtScores []karma.Score
	districts      []District
	colleges       []CollegeLevels
	levels         map[string][]LevelCount
	students       []Student
	userScores     []karma.Score
	userScoreCalls int
}

func (r *fakeRepo) GetScope(_ context.Context, userID string) (Scope, error) {
	scope, ok := r.scopes[userID]
	if !ok {
		return Scope{}, ErrNoCollegeLink
	}
	return scope, nil
}

func (r *fakeRepo) ZoneScores(context.Context) ([]karma.Score, error) { return r.zoneScores, nil }

func (r *fakeRepo) CountZoneMembers(context.Context, string) (int, error) { return r.members, nil }

func (r *fakeRepo) CountActiveMembers(_ context.Context, _ string, w karma.Window) (int, error) {
	r.activeWindow = w
	return r.active, nil
}

func (r *fakeRepo) DistrictScores(context.Context, string) ([]karma.Score, error) {
	return r.districtScores, nil
}

func (r *fakeRepo) GetDistricts(_ context.Context, ids ...string) ([]District, error) {
	var res []District
	for _, d := range r.districts {
		for _, id := range ids {
			if d.ID == id {
				res = append(res, d)
			}
		}
	}
	return res, nil
}

func (r *fakeRepo) DistrictColleges(context.Context, string) ([]CollegeLevels, error) {
	return r.colleges, nil
}

func (r *fakeRepo) LevelCounts(context.Context, ...string) (map[string][]LevelCount, error) {
	return r.levels, nil
}

func (r *fakeRepo) QueryStudents(_ context.Context, _ string, pq *core.PageQuery) ([]Student, core.Pagination, error) {
	students := make([]Student, len(r.students))
	copy(students, r.students)
	return students, core.NewPagination(pq, len(students)), nil
}

func (r *fakeRepo) UserScores(context.Context) ([]karma.Score, error) {
	r.userScoreCalls++
	return r.userScores, nil
}

func (r *fakeRepo) QueryColleges(_ context.Context, _ string, pq *core.PageQuery) ([]College, core.Pagination, error) {
	return []College{{Title: "C", Code: "C"}}, core.NewPagination(pq, 1), nil
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		scopes: map[string]Scope{
			"lead": {UserID: "lead", FullName: "Zonal Lead", OrgID: "o1", DistrictID: "d1", ZoneID: "z2", ZoneName: "North"},
		},
	}
}

func intPtr(i int) *int { return &i }

func TestService_Details(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.zoneScores = []karma.Score{{Key: "z1", Karma: 50}, {Key: "z2", Karma: 80}, {Key: "z3", Karma: 0}}
	repo.members = 7
	repo.active = 4
	svc := NewService(repo)

	core.NowFunc = func() time.Time { return time.Date(2024, time.December, 12, 8, 0, 0, 0, time.UTC) }
	defer func() { core.NowFunc = time.Now }()

	det, err := svc.Details(ctx, "lead")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, Details{
		Zone:          "North",
		Rank:          intPtr(1),
		ZonalLead:     "Zonal Lead",
		Karma:         80,
		TotalMembers:  7,
		ActiveMembers: 4,
	}, det)
	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), repo.activeWindow.Start)
	assert.Equal(t, time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), repo.activeWindow.End)

	_, err = svc.Details(ctx, "nobody")
	assert.Equal(t, ErrNoCollegeLink, err)
}

func TestService_Details_unrankedZone(t *testing.T) {
	repo := newFakeRepo()
	repo.zoneScores = []karma.Score{{Key: "z1", Karma: 50}}
	svc := NewService(repo)

	det, err := svc.Details(context.Background(), "lead")
	if assert.NoError(t, err) {
		assert.Nil(t, det.Rank)
		assert.Equal(t, int64(0), det.Karma)
	}
}

func TestService_TopDistricts(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		scores []karma.Score
		want   []District
	}{
		{name: "no districts", want: []District{}},
		{
			name:   "fewer than three",
			scores: []karma.Score{{Key: "d1", Karma: 1}, {Key: "d2", Karma: 9}},
			want:   []District{{District: "Two", ID: "d2", Rank: 1}, {District: "One", ID: "d1", Rank: 2}},
		},
		{
			name:   "best three in rank order",
			scores: []karma.Score{{Key: "d1", Karma: 5}, {Key: "d2", Karma: 20}, {Key: "d3", Karma: 5}, {Key: "d4", Karma: 30}},
			want: []District{
				{District: "Four", ID: "d4", Rank: 1},
				{District: "Two", ID: "d2", Rank: 2},
				{District: "One", ID: "d1", Rank: 3},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			repo.districtScores = tt.scores
			repo.districts = []District{{District: "One", ID: "d1"}, {District: "Two", ID: "d2"}, {District: "Three", ID: "d3"}, {District: "Four", ID: "d4"}}
			got, err := NewService(repo).TopDistricts(ctx, "lead")
			if assert.NoError(t, err) {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestService_StudentLevels(t *testing.T) {
	repo := newFakeRepo()
	repo.colleges = []CollegeLevels{{OrgID: "o1", CollegeName: "A"}, {OrgID: "o2", CollegeName: "B"}}
	repo.levels = map[string][]LevelCount{"o1": {{LevelOrder: 1, StudentsCount: 3}}}

	got, err := NewService(repo).StudentLevels(context.Background(), "lead")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []LevelCount{{LevelOrder: 1, StudentsCount: 3}}, got[0].Level)
	assert.Equal(t, []LevelCount{}, got[1].Level)
}

func TestService_Students(t *testing.T) {
	repo := newFakeRepo()
	repo.students = []Student{
		{UserID: "u1", FullName: "One", Karma: 10},
		{UserID: "u2", FullName: "Two", Karma: 0},
		{UserID: "u3", FullName: "Three", Karma: 30},
		{UserID: "u4", FullName: "Four", Karma: 5}, // not on the leaderboard
	}
	repo.userScores = []karma.Score{{Key: "u3", Karma: 30}, {Key: "u9", Karma: 20}, {Key: "u1", Karma: 10}}
	svc := NewService(repo)

	pq := &core.PageQuery{PageIndex: 1, PerPage: 10}
	students, pagination, err := svc.Students(context.Background(), "lead", pq)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, 4, pagination.Count)
	assert.Equal(t, 1, repo.userScoreCalls)
	assert.Equal(t, intPtr(3), students[0].Rank)
	assert.Equal(t, intPtr(0), students[1].Rank)
	assert.Equal(t, intPtr(1), students[2].Rank)
	assert.Nil(t, students[3].Rank)

	exported, err := svc.ExportStudents(context.Background(), "lead", *pq)
	if assert.NoError(t, err) {
		assert.Len(t, exported, len(students))
	}
}

func TestService_Colleges(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, _, err := svc.Colleges(context.Background(), "nobody", &core.PageQuery{})
	assert.Equal(t, ErrNoCollegeLink, err)

	colleges, err := svc.ExportColleges(context.Background(), "lead", core.PageQuery{})
	if assert.NoError(t, err) {
		assert.Len(t, colleges, 1)
	}
}

func TestStudent_CSVRecord(t *testing.T) {
	lvl := "Level 2"
	s := Student{FullName: "A", Karma: 12, Muid: "a@mu", Rank: intPtr(4), Level: &lvl, CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	assert.Equal(t, []string{"A", "12", "a@mu", "4", "Level 2", "2024-01-02T03:04:05Z"}, s.CSVRecord())
	assert.Equal(t, len(s.CSVHeader()), len(s.CSVRecord()))

	s = Student{FullName: "B"}
	assert.Equal(t, "", s.CSVRecord()[3])
}
