package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"Aurora_Blog/internal/data"
	"Aurora_Blog/internal/model"
	"Aurora_Blog/internal/repository"
	"Aurora_Blog/pkg/logger"

	go_mysql "github.com/go-sql-driver/mysql"
	"github.com/streadway/amqp"
	"gorm.io/gorm"
)

const (
	// 遵循：项目名.业务领域.实体/功能
	QueueModeration = "aurora.moderation.queue"

	ActionCreated  = "created"
	ActionApproved = "approved"
	ActionRejected = "rejected"

	// 匿名作者不填名字时的默认展示名
	DefaultAuthorName = "匿名用户"
)

var (
	// ErrParentNotFound 回复的父评论不存在，或不属于同一篇文章
	ErrParentNotFound = errors.New("回复的评论不存在")
	// ErrStatusConflict 评论已处于终态，不允许再变更
	ErrStatusConflict = errors.New("评论状态不允许该变更")
)

// CommentEventMessage 是投递到审计队列的消息结构
type CommentEventMessage struct {
	CommentID uint64 `json:"comment_id"`
	PostID    string `json:"post_id"`
	Action    string `json:"action"` // created / approved / rejected
	Status    string `json:"status"`
}

// CreateCommentInput 携带的Content必须是已经脱敏过的文本，
// Status由API层按审核策略算好传进来，service不再做策略判断
type CreateCommentInput struct {
	Content  string
	PostID   string
	PostSlug string
	ParentID *uint64
	Status   string

	// 二选一的身份信息：登录用户带UserID，匿名作者带Author*字段
	UserID      *uint64
	AuthorName  string
	AuthorEmail string
	AuthorImage string
}

type CommentService interface {
	// 获取一篇文章的线程化评论，status为空表示不过滤（后台用）
	GetComments(postID, postSlug, status string) ([]model.Comment, map[uint64][]*model.Comment, error)
	// 创建评论，匿名作者按email归并到同一个用户
	CreateComment(in CreateCommentInput) (*model.Comment, error)
	// 后台分页列表
	ListComments(status string, page, limit int) ([]model.Comment, int64, error)
	// 审核状态流转：pending -> approved / pending -> rejected
	Moderate(commentID uint64, target string) (*model.Comment, error)
}

// ResolveStatus 是审核策略的唯一出口：管理员免审，命中敏感词直接拒绝，其余进待审队列
func ResolveStatus(isAdmin, flagged bool) string {
	if isAdmin {
		return model.StatusApproved
	}
	if flagged {
		return model.StatusRejected
	}
	return model.StatusPending
}

type commentService struct {
	commentRepo repository.CommentRepository
	uow         data.UnitOfWork

	rabbitMQConn *amqp.Connection
}

func NewCommentService(commentRepo repository.CommentRepository, uow data.UnitOfWork, conn *amqp.Connection) CommentService {
	// 测试场景不接MQ，conn传nil即可
	if conn != nil {
		ch, err := conn.Channel()
		if err != nil {
			panic("无法打开RabbitMQ Channel")
		}
		defer ch.Close()
		// 队列声明是幂等的，存在就什么都不做
		if _, err := ch.QueueDeclare(QueueModeration, true, false, false, false, nil); err != nil {
			panic("无法声明审计队列")
		}
	}

	return &commentService{
		commentRepo:  commentRepo,
		uow:          uow,
		rabbitMQConn: conn,
	}
}

// 获取文章的评论列表：1、按过滤条件查一级评论 2、按一级评论ID批量查回复 3、内存中把回复挂到各自的一级评论下
func (s *commentService) GetComments(postID, postSlug, status string) ([]model.Comment, map[uint64][]*model.Comment, error) {
	parents, err := s.commentRepo.List(repository.CommentFilter{
		PostID:       postID,
		PostSlug:     postSlug,
		Status:       status,
		OnlyTopLevel: true,
	}, 0, 0)
	if err != nil {
		return nil, nil, err
	}
	if len(parents) == 0 {
		return nil, nil, nil
	}

	parentIDs := make([]uint64, 0, len(parents))
	for _, pc := range parents {
		parentIDs = append(parentIDs, pc.ID)
	}
	// 回复遵循同样的状态过滤，游客看不到待审/被拒的回复
	replies, err := s.commentRepo.RepliesByParentIDs(parentIDs, status)
	if err != nil {
		return nil, nil, err
	}

	replyMap := make(map[uint64][]*model.Comment)
	for i := range replies {
		reply := replies[i]
		if reply.ParentID != nil {
			replyMap[*reply.ParentID] = append(replyMap[*reply.ParentID], &reply)
		}
	}
	return parents, replyMap, nil
}

// 创建评论：1、校验父评论 2、解析作者身份（必要时在事务里按email找建用户） 3、落库后带User重查 4、投递审计消息
func (s *commentService) CreateComment(in CreateCommentInput) (*model.Comment, error) {
	// 父评论必须存在且属于同一篇文章，否则按校验错误处理
	if in.ParentID != nil {
		parent, err := s.commentRepo.FindByID(*in.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, ErrParentNotFound
		}
	}

	newComment := &model.Comment{
		PostID:   in.PostID,
		PostSlug: in.PostSlug,
		Content:  in.Content,
		Status:   in.Status,
		ParentID: in.ParentID,
	}

	if in.UserID != nil {
		// 登录用户，身份直接来自JWT
		newComment.UserID = *in.UserID
		if err := s.commentRepo.Create(newComment); err != nil {
			return nil, err
		}
	} else {
		// 匿名作者：按email找用户，没有就建一个，整个序列落在一个事务里，
		// 保证并发提交同一email时最多只会产生一行用户
		err := s.uow.Execute(func(repos *data.TransactionalRepositories) error {
			user, err := s.resolveAnonymousAuthor(repos.UserRepo, in)
			if err != nil {
				return err
			}
			newComment.UserID = user.ID
			return repos.CommentRepo.Create(newComment)
		})
		if err != nil {
			return nil, err
		}
	}

	// 创建成功后带着User关联重查一次，给响应用
	created, err := s.commentRepo.FindByID(newComment.ID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(CommentEventMessage{
		CommentID: created.ID,
		PostID:    created.PostID,
		Action:    ActionCreated,
		Status:    created.Status,
	})
	return created, nil
}

// 在事务内按email解析匿名作者：先加行锁查，没有就建；
// 撞上唯一索引（并发对手先插入成功）就重查一次拿现成的行
func (s *commentService) resolveAnonymousAuthor(userRepo repository.UserRepository, in CreateCommentInput) (*model.User, error) {
	user, err := userRepo.FindByEmailForUpdate(in.AuthorEmail)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	email := in.AuthorEmail
	name := in.AuthorName
	if name == "" {
		name = DefaultAuthorName
	}
	image := in.AuthorImage
	if image == "" {
		// 确定性的生成头像，用提交时间做种子
		image = fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%d", time.Now().UnixMilli())
	}
	user = &model.User{
		Name:  name,
		Email: &email,
		Image: image,
		Role:  model.RoleUser,
	}
	if cerr := userRepo.Create(user); cerr != nil {
		if isDuplicateKey(cerr) {
			return userRepo.FindByEmailForUpdate(in.AuthorEmail)
		}
		return nil, cerr
	}
	return user, nil
}

// MySQL错误1062：唯一索引冲突
func isDuplicateKey(err error) bool {
	var mysqlErr *go_mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// 后台分页列表：1、计算分页参数 2、查当前页 3、查总数
func (s *commentService) ListComments(status string, page, limit int) ([]model.Comment, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	f := repository.CommentFilter{Status: status}
	comments, err := s.commentRepo.List(f, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.commentRepo.Count(f)
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// 状态流转：重复设置当前状态是幂等的空操作；只有pending可以流转，
// 其余情况（approved<->rejected）一律返回冲突
func (s *commentService) Moderate(commentID uint64, target string) (*model.Comment, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return nil, err // 包括 gorm.ErrRecordNotFound，由handler映射为404
	}
	if comment.Status == target {
		return comment, nil
	}
	if comment.Status != model.StatusPending {
		return nil, ErrStatusConflict
	}

	if err := s.commentRepo.UpdateStatus(commentID, target); err != nil {
		return nil, err
	}
	comment.Status = target

	action := ActionApproved
	if target == model.StatusRejected {
		action = ActionRejected
	}
	s.publishEvent(CommentEventMessage{
		CommentID: comment.ID,
		PostID:    comment.PostID,
		Action:    action,
		Status:    target,
	})
	return comment, nil
}

// 投递审计消息，尽力而为：MQ出问题只记日志，绝不让请求失败
func (s *commentService) publishEvent(msg CommentEventMessage) {
	if s.rabbitMQConn == nil {
		return
	}
	// 每条消息用独立的Channel，消息之间互不影响
	ch, err := s.rabbitMQConn.Channel()
	if err != nil {
		logger.Log.WithError(err).Warn("审计消息Channel创建失败")
		return
	}
	defer ch.Close()

	body, err := json.Marshal(msg)
	if err != nil {
		logger.Log.WithError(err).Warn("审计消息序列化失败")
		return
	}
	err = ch.Publish(
		"",              // exchange默认交换机
		QueueModeration, // routing key
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // 消息持久化
		})
	if err != nil {
		logger.Log.WithError(err).
			WithField("comment_id", msg.CommentID).
			Warn("审计消息投递失败")
	}
}
