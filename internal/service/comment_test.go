package service

import (
	"sort"
	"testing"
	"time"

	"Aurora_Blog/internal/data"
	"Aurora_Blog/internal/model"
	"Aurora_Blog/internal/repository"

	go_mysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ---- 内存版的Repository和UnitOfWork，接口和真实现完全一致 ----

type fakeUserRepo struct {
	nextID uint64
	users  map[uint64]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint64]*model.User)}
}

func (f *fakeUserRepo) Create(user *model.User) error {
	if user.Email != nil {
		for _, u := range f.users {
			if u.Email != nil && *u.Email == *user.Email {
				// 模拟MySQL唯一索引冲突
				return &go_mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
			}
		}
	}
	f.nextID++
	user.ID = f.nextID
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindByID(userID uint64) (*model.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) FindByEmail(email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email != nil && *u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByEmailForUpdate(email string) (*model.User, error) {
	return f.FindByEmail(email)
}

func (f *fakeUserRepo) WithTx(tx *gorm.DB) repository.UserRepository { return f }

type fakeCommentRepo struct {
	nextID   uint64
	comments map[uint64]*model.Comment
	users    *fakeUserRepo

	updateCalls int
}

func newFakeCommentRepo(users *fakeUserRepo) *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[uint64]*model.Comment), users: users}
}

func (f *fakeCommentRepo) Create(comment *model.Comment) error {
	f.nextID++
	comment.ID = f.nextID
	if comment.CreatedAt.IsZero() {
		// 保证插入顺序即时间顺序
		comment.CreatedAt = time.Now().Add(time.Duration(f.nextID) * time.Millisecond)
	}
	cp := *comment
	f.comments[comment.ID] = &cp
	return nil
}

func (f *fakeCommentRepo) FindByID(commentID uint64) (*model.Comment, error) {
	c, ok := f.comments[commentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	f.preloadUser(&cp)
	return &cp, nil
}

// 模拟gorm的Preload("User")
func (f *fakeCommentRepo) preloadUser(c *model.Comment) {
	if f.users == nil {
		return
	}
	if u, err := f.users.FindByID(c.UserID); err == nil {
		c.User = *u
	}
}

func (f *fakeCommentRepo) match(c *model.Comment, filter repository.CommentFilter) bool {
	if filter.PostID != "" && c.PostID != filter.PostID {
		return false
	}
	if filter.PostSlug != "" && c.PostSlug != filter.PostSlug {
		return false
	}
	if filter.Status != "" && c.Status != filter.Status {
		return false
	}
	if filter.OnlyTopLevel && c.ParentID != nil {
		return false
	}
	return true
}

func (f *fakeCommentRepo) List(filter repository.CommentFilter, offset, limit int) ([]model.Comment, error) {
	var out []model.Comment
	for _, c := range f.comments {
		if f.match(c, filter) {
			cp := *c
			f.preloadUser(&cp)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeCommentRepo) Count(filter repository.CommentFilter) (int64, error) {
	var total int64
	for _, c := range f.comments {
		if f.match(c, filter) {
			total++
		}
	}
	return total, nil
}

func (f *fakeCommentRepo) RepliesByParentIDs(parentIDs []uint64, status string) ([]model.Comment, error) {
	idSet := make(map[uint64]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		idSet[id] = struct{}{}
	}
	var out []model.Comment
	for _, c := range f.comments {
		if c.ParentID == nil {
			continue
		}
		if _, ok := idSet[*c.ParentID]; !ok {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		cp := *c
		f.preloadUser(&cp)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeCommentRepo) UpdateStatus(commentID uint64, status string) error {
	c, ok := f.comments[commentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	f.updateCalls++
	c.Status = status
	return nil
}

func (f *fakeCommentRepo) WithTx(tx *gorm.DB) repository.CommentRepository { return f }

type fakeUnitOfWork struct {
	users    repository.UserRepository
	comments repository.CommentRepository
}

func (f *fakeUnitOfWork) Execute(fn func(repos *data.TransactionalRepositories) error) error {
	return fn(&data.TransactionalRepositories{
		UserRepo:    f.users,
		CommentRepo: f.comments,
	})
}

func newTestCommentService() (CommentService, *fakeCommentRepo, *fakeUserRepo) {
	users := newFakeUserRepo()
	comments := newFakeCommentRepo(users)
	uow := &fakeUnitOfWork{users: users, comments: comments}
	return NewCommentService(comments, uow, nil), comments, users
}

// ---- 审核策略 ----

func TestResolveStatus(t *testing.T) {
	tests := []struct {
		name    string
		isAdmin bool
		flagged bool
		want    string
	}{
		{"管理员免审", true, false, model.StatusApproved},
		{"管理员命中敏感词也免审", true, true, model.StatusApproved},
		{"普通用户命中敏感词直接拒绝", false, true, model.StatusRejected},
		{"普通用户干净内容进待审", false, false, model.StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveStatus(tt.isAdmin, tt.flagged))
		})
	}
}

// ---- 创建评论 ----

func TestCreateCommentAnonymousNewUser(t *testing.T) {
	svc, _, users := newTestCommentService()

	created, err := svc.CreateComment(CreateCommentInput{
		Content:     "第一条评论",
		PostID:      "post-1",
		Status:      model.StatusPending,
		AuthorEmail: "guest@example.com",
	})
	require.NoError(t, err)

	// 匿名作者被隐式建出来，名字和头像取默认值
	user, err := users.FindByID(created.UserID)
	require.NoError(t, err)
	assert.Equal(t, DefaultAuthorName, user.Name)
	assert.Contains(t, user.Image, "dicebear")
	require.NotNil(t, user.Email)
	assert.Equal(t, "guest@example.com", *user.Email)
	assert.Equal(t, model.RoleUser, user.Role)

	// 响应里带着Preload出来的作者
	assert.Equal(t, user.ID, created.User.ID)
}

func TestCreateCommentAnonymousReusesUserByEmail(t *testing.T) {
	svc, _, users := newTestCommentService()

	first, err := svc.CreateComment(CreateCommentInput{
		Content:     "第一条",
		PostID:      "post-1",
		Status:      model.StatusPending,
		AuthorName:  "小明",
		AuthorEmail: "ming@example.com",
	})
	require.NoError(t, err)

	second, err := svc.CreateComment(CreateCommentInput{
		Content:     "第二条",
		PostID:      "post-2",
		Status:      model.StatusPending,
		AuthorName:  "换了个名字",
		AuthorEmail: "ming@example.com",
	})
	require.NoError(t, err)

	// 同一个email永远只对应一行用户，两条评论都挂在它名下
	assert.Equal(t, first.UserID, second.UserID)
	assert.Len(t, users.users, 1)
}

// 模拟输掉并发竞争的事务：第一次按email查不到，
// Create时对手已经插入成功撞上唯一索引，重查要拿到对手的那行
type racingUserRepo struct {
	*fakeUserRepo
	rival   *model.User
	lookups int
}

func (r *racingUserRepo) FindByEmailForUpdate(email string) (*model.User, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r.rival
	return &cp, nil
}

func (r *racingUserRepo) Create(user *model.User) error {
	return &go_mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
}

func (r *racingUserRepo) WithTx(tx *gorm.DB) repository.UserRepository { return r }

func TestCreateCommentAnonymousDuplicateKeyRace(t *testing.T) {
	users := newFakeUserRepo()
	email := "guest@example.com"
	rival := &model.User{Name: "匿名用户", Email: &email, Role: model.RoleUser}
	require.NoError(t, users.Create(rival))

	racing := &racingUserRepo{fakeUserRepo: users, rival: rival}
	comments := newFakeCommentRepo(users)
	uow := &fakeUnitOfWork{users: racing, comments: comments}
	svc := NewCommentService(comments, uow, nil)

	created, err := svc.CreateComment(CreateCommentInput{
		Content:     "输掉竞争的那条评论",
		PostID:      "post-1",
		Status:      model.StatusPending,
		AuthorEmail: email,
	})
	require.NoError(t, err)

	// 唯一索引冲突后重查一次，评论挂到对手插入的那行用户上
	assert.Equal(t, rival.ID, created.UserID)
	assert.Equal(t, 2, racing.lookups)
	// 自始至终只有一行用户
	assert.Len(t, users.users, 1)
}

func TestCreateCommentAuthenticated(t *testing.T) {
	svc, _, users := newTestCommentService()
	email := "author@example.com"
	author := &model.User{Name: "作者", Email: &email, Role: model.RoleUser}
	require.NoError(t, users.Create(author))

	userID := author.ID
	created, err := svc.CreateComment(CreateCommentInput{
		Content: "登录用户的评论",
		PostID:  "post-1",
		Status:  model.StatusApproved,
		UserID:  &userID,
	})
	require.NoError(t, err)
	assert.Equal(t, userID, created.UserID)
	// 登录路径不会多建用户
	assert.Len(t, users.users, 1)
}

func TestCreateCommentParentValidation(t *testing.T) {
	svc, _, _ := newTestCommentService()

	parent, err := svc.CreateComment(CreateCommentInput{
		Content:     "一级评论",
		PostID:      "post-1",
		Status:      model.StatusApproved,
		AuthorEmail: "a@example.com",
	})
	require.NoError(t, err)

	// 父评论不存在
	missing := uint64(999)
	_, err = svc.CreateComment(CreateCommentInput{
		Content:     "回复",
		PostID:      "post-1",
		Status:      model.StatusPending,
		ParentID:    &missing,
		AuthorEmail: "b@example.com",
	})
	assert.ErrorIs(t, err, ErrParentNotFound)

	// 父评论属于另一篇文章
	_, err = svc.CreateComment(CreateCommentInput{
		Content:     "回复",
		PostID:      "post-2",
		Status:      model.StatusPending,
		ParentID:    &parent.ID,
		AuthorEmail: "b@example.com",
	})
	assert.ErrorIs(t, err, ErrParentNotFound)

	// 合法的回复
	reply, err := svc.CreateComment(CreateCommentInput{
		Content:     "回复",
		PostID:      "post-1",
		Status:      model.StatusPending,
		ParentID:    &parent.ID,
		AuthorEmail: "b@example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, parent.ID, *reply.ParentID)
}

// ---- 线程化读取 ----

func TestGetCommentsThreading(t *testing.T) {
	svc, _, _ := newTestCommentService()

	older, err := svc.CreateComment(CreateCommentInput{
		Content: "先发的一级评论", PostID: "post-1",
		Status: model.StatusApproved, AuthorEmail: "a@example.com",
	})
	require.NoError(t, err)
	newer, err := svc.CreateComment(CreateCommentInput{
		Content: "后发的一级评论", PostID: "post-1",
		Status: model.StatusApproved, AuthorEmail: "b@example.com",
	})
	require.NoError(t, err)

	reply1, err := svc.CreateComment(CreateCommentInput{
		Content: "先发的回复", PostID: "post-1", ParentID: &older.ID,
		Status: model.StatusApproved, AuthorEmail: "c@example.com",
	})
	require.NoError(t, err)
	reply2, err := svc.CreateComment(CreateCommentInput{
		Content: "后发的回复", PostID: "post-1", ParentID: &older.ID,
		Status: model.StatusApproved, AuthorEmail: "d@example.com",
	})
	require.NoError(t, err)
	// 待审的回复在approved过滤下不可见
	_, err = svc.CreateComment(CreateCommentInput{
		Content: "待审的回复", PostID: "post-1", ParentID: &older.ID,
		Status: model.StatusPending, AuthorEmail: "e@example.com",
	})
	require.NoError(t, err)

	parents, replyMap, err := svc.GetComments("post-1", "", model.StatusApproved)
	require.NoError(t, err)

	// 一级评论按时间倒序（最新的在前）
	require.Len(t, parents, 2)
	assert.Equal(t, newer.ID, parents[0].ID)
	assert.Equal(t, older.ID, parents[1].ID)

	// 回复按时间正序挂在父评论下，且遵循状态过滤
	replies := replyMap[older.ID]
	require.Len(t, replies, 2)
	assert.Equal(t, reply1.ID, replies[0].ID)
	assert.Equal(t, reply2.ID, replies[1].ID)

	// 不过滤状态时待审回复也能看到（后台视角）
	_, replyMapAll, err := svc.GetComments("post-1", "", "")
	require.NoError(t, err)
	assert.Len(t, replyMapAll[older.ID], 3)
}

func TestGetCommentsEmptyResult(t *testing.T) {
	svc, _, _ := newTestCommentService()
	parents, replyMap, err := svc.GetComments("no-such-post", "", model.StatusApproved)
	require.NoError(t, err)
	assert.Empty(t, parents)
	assert.Empty(t, replyMap)
}

// ---- 后台分页 ----

func TestListComments(t *testing.T) {
	svc, _, _ := newTestCommentService()
	for i := 0; i < 25; i++ {
		_, err := svc.CreateComment(CreateCommentInput{
			Content: "评论", PostID: "post-1",
			Status: model.StatusPending, AuthorEmail: "a@example.com",
		})
		require.NoError(t, err)
	}

	comments, total, err := svc.ListComments(model.StatusPending, 1, 20)
	require.NoError(t, err)
	assert.Len(t, comments, 20)
	assert.Equal(t, int64(25), total)

	comments, total, err = svc.ListComments(model.StatusPending, 2, 20)
	require.NoError(t, err)
	assert.Len(t, comments, 5)
	assert.Equal(t, int64(25), total)

	// 非法分页参数回落到默认值
	comments, _, err = svc.ListComments(model.StatusPending, 0, -1)
	require.NoError(t, err)
	assert.Len(t, comments, 20)
}

// ---- 状态机 ----

func TestModerateTransitions(t *testing.T) {
	svc, comments, _ := newTestCommentService()

	pending, err := svc.CreateComment(CreateCommentInput{
		Content: "待审评论", PostID: "post-1",
		Status: model.StatusPending, AuthorEmail: "a@example.com",
	})
	require.NoError(t, err)

	// pending -> approved
	approved, err := svc.Moderate(pending.ID, model.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, approved.Status)
	assert.Equal(t, 1, comments.updateCalls)

	// 重复approve是幂等空操作，不会再写库
	again, err := svc.Moderate(pending.ID, model.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, again.Status)
	assert.Equal(t, 1, comments.updateCalls)

	// 终态之间不允许流转
	_, err = svc.Moderate(pending.ID, model.StatusRejected)
	assert.ErrorIs(t, err, ErrStatusConflict)
	assert.Equal(t, 1, comments.updateCalls)

	// 不存在的评论
	_, err = svc.Moderate(99999, model.StatusApproved)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestModerateReject(t *testing.T) {
	svc, _, _ := newTestCommentService()
	pending, err := svc.CreateComment(CreateCommentInput{
		Content: "待审评论", PostID: "post-1",
		Status: model.StatusPending, AuthorEmail: "a@example.com",
	})
	require.NoError(t, err)

	rejected, err := svc.Moderate(pending.ID, model.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, rejected.Status)
}
