package models

import "time"

// ItemStatus 闭合状态集，非法流转在 CanTransition 里挡掉
type ItemStatus string

const (
	StatusPending  ItemStatus = "pending"
	StatusApproved ItemStatus = "approved"
	StatusBorrowed ItemStatus = "borrowed"
	StatusRejected ItemStatus = "rejected"
	StatusReturned ItemStatus = "returned"
)

// 流转表：pending -> approved/borrowed/rejected，approved -> borrowed/returned，
// borrowed -> returned。rejected / returned 是终态。
var itemTransitions = map[ItemStatus][]ItemStatus{
	StatusPending:  {StatusApproved, StatusBorrowed, StatusRejected},
	StatusApproved: {StatusBorrowed, StatusReturned},
	StatusBorrowed: {StatusReturned},
	StatusRejected: {},
	StatusReturned: {},
}

func (s ItemStatus) Valid() bool {
	_, ok := itemTransitions[s]
	return ok
}

func (s ItemStatus) CanTransition(to ItemStatus) bool {
	for _, t := range itemTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Active 表示该条目还占着库存（未归还、未拒绝）
func (s ItemStatus) Active() bool {
	return s == StatusApproved || s == StatusBorrowed
}

type RemarkType string

const (
	RemarkDamaged      RemarkType = "damaged"
	RemarkMissingParts RemarkType = "missing-parts"
	RemarkLateReturn   RemarkType = "late-return"
	RemarkWrongItem    RemarkType = "wrong-item"
	RemarkOther        RemarkType = "other"
)

var remarkLabels = map[RemarkType]string{
	RemarkDamaged:      "Damaged",
	RemarkMissingParts: "Missing Parts",
	RemarkLateReturn:   "Late Return",
	RemarkWrongItem:    "Wrong Item",
	RemarkOther:        "Other",
}

func (t RemarkType) Label() string {
	if l, ok := remarkLabels[t]; ok {
		return l
	}
	return string(t)
}

type Remark struct {
	Type      RemarkType `json:"type,omitempty"`
	Text      string     `json:"text,omitempty"`
	Author    string     `json:"author,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

func (r Remark) Empty() bool { return r.Type == "" && r.Text == "" }

// RequestItem 一条借用请求里的单个条目
type RequestItem struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	ItemKey  string     `json:"itemKey"`
	Quantity int        `json:"quantity"`
	Image    string     `json:"image,omitempty"`
	Status   ItemStatus `json:"status"`

	Description     string     `json:"description,omitempty"`
	AdminRemark     string     `json:"adminRemark,omitempty"`
	RemarkType      RemarkType `json:"remarkType,omitempty"`
	RemarkCreatedAt string     `json:"remarkCreatedAt,omitempty"`
}

type BorrowRequest struct {
	ID        int64  `json:"id"`
	RequestID string `json:"requestId"` // 对外短码，如 LYOQNPL
	LoanID    string `json:"loanId,omitempty"` // 本地拆分出的借出记录编号

	StudentName string `json:"studentName"`
	StudentID   string `json:"studentId"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Department  string `json:"department,omitempty"`

	TeacherName  string `json:"teacherName,omitempty"`
	TeacherEmail string `json:"teacherEmail,omitempty"`
	TeacherPhone string `json:"teacherPhone,omitempty"`

	Purpose    string `json:"purpose,omitempty"`
	BorrowDate string `json:"borrowDate,omitempty"`
	ReturnDate string `json:"returnDate,omitempty"`

	Items []RequestItem `json:"items"`

	AdminRemark      string     `json:"adminRemark,omitempty"`
	RemarkType       RemarkType `json:"remarkType,omitempty"`
	ActualReturnDate string     `json:"actualReturnDate,omitempty"`
	Timestamp        string     `json:"timestamp,omitempty"`
}

// Status 由条目状态推导，不单独落库
func (r *BorrowRequest) Status() ItemStatus {
	if len(r.Items) == 0 {
		return StatusPending
	}
	allReturned, allRejected := true, true
	for _, it := range r.Items {
		if it.Status == StatusPending {
			return StatusPending
		}
		if it.Status != StatusReturned {
			allReturned = false
		}
		if it.Status != StatusRejected {
			allRejected = false
		}
	}
	if allReturned {
		return StatusReturned
	}
	if allRejected {
		return StatusRejected
	}
	return StatusBorrowed
}

// HasItemIn 视图按“至少一个条目处于某状态”过滤
func (r *BorrowRequest) HasItemIn(statuses ...ItemStatus) bool {
	for _, it := range r.Items {
		for _, s := range statuses {
			if it.Status == s {
				return true
			}
		}
	}
	return false
}

func (r *BorrowRequest) FindItem(itemID int64) *RequestItem {
	for i := range r.Items {
		if r.Items[i].ID == itemID {
			return &r.Items[i]
		}
	}
	return nil
}
