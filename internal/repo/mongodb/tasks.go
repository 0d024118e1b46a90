package mongodb

import (
	"context"
	"errors"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TasksRepo struct {
	coll *mongo.Collection
	prom *observability.Prom
}

func NewTasksRepo(db *mongo.Database, prom *observability.Prom) *TasksRepo {
	return &TasksRepo{coll: db.Collection(tasksCollection), prom: prom}
}

func (r *TasksRepo) Create(ctx context.Context, t task.Task) (task.Task, error) {
	err := observe(r.prom, "tasks.create", func() error {
		_, err := r.coll.InsertOne(ctx, t)
		return err
	})
	if err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func (r *TasksRepo) GetByID(ctx context.Context, id string) (task.Task, error) {
	var t task.Task

	err := observe(r.prom, "tasks.get_by_id", func() error {
		return r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}
	return t, nil
}

func scopeMatch(scope task.Scope) bson.M {
	m := bson.M{}
	if scope.AssigneeID != "" {
		m["assignedTo"] = scope.AssigneeID
	}
	return m
}

func listMatch(filter task.ListTasksFilter) bson.M {
	m := scopeMatch(filter.Scope)
	if filter.Status != nil {
		m["status"] = string(*filter.Status)
	}
	if filter.Priority != nil {
		m["priority"] = string(*filter.Priority)
	}
	return m
}

// sortStages orders like the sql store: priority by rank, missing due dates
// last, id as the tiebreak.
func sortStages(s task.Sort) []bson.D {
	dir := 1
	if s.Desc {
		dir = -1
	}

	switch s.Field {
	case "priority":
		ranks := make(bson.A, 0, len(task.Priorities))
		for _, p := range task.Priorities {
			ranks = append(ranks, string(p))
		}
		return []bson.D{
			{{Key: "$addFields", Value: bson.M{"_sortKey": bson.M{"$indexOfArray": bson.A{ranks, "$priority"}}}}},
			{{Key: "$sort", Value: bson.D{{Key: "_sortKey", Value: dir}, {Key: "_id", Value: dir}}}},
			{{Key: "$unset", Value: "_sortKey"}},
		}
	case "dueDate":
		return []bson.D{
			{{Key: "$addFields", Value: bson.M{"_sortKey": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{bson.M{"$type": "$dueDate"}, "date"}}, 0, 1},
			}}}},
			{{Key: "$sort", Value: bson.D{{Key: "_sortKey", Value: 1}, {Key: "dueDate", Value: dir}, {Key: "_id", Value: dir}}}},
			{{Key: "$unset", Value: "_sortKey"}},
		}
	default:
		return []bson.D{
			{{Key: "$sort", Value: bson.D{{Key: s.Field, Value: dir}, {Key: "_id", Value: dir}}}},
		}
	}
}

type listFacet struct {
	Items []task.Task `bson:"items"`
	Total []struct {
		N int `bson:"n"`
	} `bson:"total"`
}

func (r *TasksRepo) List(ctx context.Context, filter task.ListTasksFilter) (task.Page, error) {
	s := filter.Sort
	if s.Field == "" {
		s = task.ParseSort(task.DefaultSortKey)
	}

	items := bson.A{}
	for _, st := range sortStages(s) {
		items = append(items, st)
	}
	items = append(items, bson.D{{Key: "$skip", Value: int64(filter.Offset)}})
	if filter.Limit > 0 {
		items = append(items, bson.D{{Key: "$limit", Value: int64(filter.Limit)}})
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: listMatch(filter)}},
		{{Key: "$facet", Value: bson.M{
			"items": items,
			"total": bson.A{bson.D{{Key: "$count", Value: "n"}}},
		}}},
	}

	var facets []listFacet
	err := observe(r.prom, "tasks.list", func() error {
		cur, err := r.coll.Aggregate(ctx, pipeline)
		if err != nil {
			return err
		}
		return cur.All(ctx, &facets)
	})
	if err != nil {
		return task.Page{}, err
	}

	page := task.Page{Items: []task.Task{}}
	if len(facets) == 1 {
		if facets[0].Items != nil {
			page.Items = facets[0].Items
		}
		if len(facets[0].Total) == 1 {
			page.Total = facets[0].Total[0].N
		}
	}
	return page, nil
}

func (r *TasksRepo) Update(ctx context.Context, id string, patch task.Patch) (task.Task, error) {
	set := bson.M{"updatedAt": patch.UpdatedAt}

	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.AssignedToID != nil {
		set["assignedTo"] = *patch.AssignedToID
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	if patch.Priority != nil {
		set["priority"] = string(*patch.Priority)
	}
	if patch.DueDate != nil {
		set["dueDate"] = *patch.DueDate
	}
	if patch.CompletedAt != nil {
		set["completedAt"] = *patch.CompletedAt
	}
	if patch.Response != nil {
		set["response"] = *patch.Response
	}
	if patch.ResponseSubmittedAt != nil {
		set["responseSubmittedAt"] = *patch.ResponseSubmittedAt
	}

	var t task.Task
	err := observe(r.prom, "tasks.update", func() error {
		return r.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": id},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&t)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}
	return t, nil
}

func (r *TasksRepo) Delete(ctx context.Context, id string) error {
	var res *mongo.DeleteResult

	err := observe(r.prom, "tasks.delete", func() error {
		var err error
		res, err = r.coll.DeleteOne(ctx, bson.M{"_id": id})
		return err
	})
	if err != nil {
		return err
	}

	if res.DeletedCount == 0 {
		return task.ErrNotFound
	}
	return nil
}

func (r *TasksRepo) Count(ctx context.Context, scope task.Scope) (int, error) {
	var n int64

	err := observe(r.prom, "tasks.count", func() error {
		var err error
		n, err = r.coll.CountDocuments(ctx, scopeMatch(scope))
		return err
	})
	return int(n), err
}

func isDate(field string) bson.M {
	return bson.M{"$eq": bson.A{bson.M{"$type": field}, "date"}}
}

func countIf(cond bson.M) bson.M {
	return bson.M{"$sum": bson.M{"$cond": bson.A{cond, 1, 0}}}
}

type statsFacet struct {
	ByStatus   []task.GroupCount `bson:"byStatus"`
	ByPriority []task.GroupCount `bson:"byPriority"`
	Totals     []struct {
		Total             int `bson:"total"`
		Overdue           int `bson:"overdue"`
		CompletedThisWeek int `bson:"completedThisWeek"`
	} `bson:"totals"`
}

func groupStage(field string) bson.A {
	return bson.A{
		bson.D{{Key: "$group", Value: bson.M{"_id": field, "count": bson.M{"$sum": 1}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

func (r *TasksRepo) Stats(ctx context.Context, scope task.Scope, window task.StatsWindow) (task.Stats, error) {
	overdue := bson.M{"$and": bson.A{
		isDate("$dueDate"),
		bson.M{"$lt": bson.A{"$dueDate", window.Now}},
		bson.M{"$not": bson.A{bson.M{"$in": bson.A{"$status", bson.A{string(task.StatusCompleted), string(task.StatusCancelled)}}}}},
	}}

	completedThisWeek := bson.M{"$and": bson.A{
		bson.M{"$eq": bson.A{"$status", string(task.StatusCompleted)}},
		isDate("$completedAt"),
		bson.M{"$gte": bson.A{"$completedAt", window.WeekAgo}},
	}}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: scopeMatch(scope)}},
		{{Key: "$facet", Value: bson.M{
			"byStatus":   groupStage("$status"),
			"byPriority": groupStage("$priority"),
			"totals": bson.A{
				bson.D{{Key: "$group", Value: bson.M{
					"_id":               nil,
					"total":             bson.M{"$sum": 1},
					"overdue":           countIf(overdue),
					"completedThisWeek": countIf(completedThisWeek),
				}}},
			},
		}}},
	}

	var facets []statsFacet
	err := observe(r.prom, "tasks.stats", func() error {
		cur, err := r.coll.Aggregate(ctx, pipeline)
		if err != nil {
			return err
		}
		return cur.All(ctx, &facets)
	})
	if err != nil {
		return task.Stats{}, err
	}

	st := task.Stats{ByStatus: []task.GroupCount{}, ByPriority: []task.GroupCount{}}
	if len(facets) == 1 {
		f := facets[0]
		if f.ByStatus != nil {
			st.ByStatus = f.ByStatus
		}
		if f.ByPriority != nil {
			st.ByPriority = f.ByPriority
		}
		if len(f.Totals) == 1 {
			st.Total = f.Totals[0].Total
			st.Overdue = f.Totals[0].Overdue
			st.CompletedThisWeek = f.Totals[0].CompletedThisWeek
		}
	}
	return st, nil
}

func (r *TasksRepo) CountByAssignee(ctx context.Context) ([]task.UserBreakdown, error) {
	statusIs := func(s task.Status) bson.M {
		return bson.M{"$eq": bson.A{"$status", string(s)}}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":        "$assignedTo",
			"total":      bson.M{"$sum": 1},
			"completed":  countIf(statusIs(task.StatusCompleted)),
			"pending":    countIf(statusIs(task.StatusPending)),
			"inProgress": countIf(statusIs(task.StatusInProgress)),
		}}},
	}

	out := make([]task.UserBreakdown, 0)
	err := observe(r.prom, "tasks.count_by_assignee", func() error {
		cur, err := r.coll.Aggregate(ctx, pipeline)
		if err != nil {
			return err
		}
		return cur.All(ctx, &out)
	})
	return out, err
}

func (r *TasksRepo) Recent(ctx context.Context, limit int) ([]task.Task, error) {
	out := make([]task.Task, 0, limit)

	err := observe(r.prom, "tasks.recent", func() error {
		cur, err := r.coll.Find(ctx, bson.M{},
			options.Find().
				SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
				SetLimit(int64(limit)),
		)
		if err != nil {
			return err
		}
		return cur.All(ctx, &out)
	})
	return out, err
}
