package sqsengine

import (
	"iter"
	"math"
	"sort"

	"awslite/internal/uuid"
)

func newGroupedInflightMessages() *groupedInflightMessages {
	return &groupedInflightMessages{
		receiptHandles: make(map[string]*MessageState),
		groups:         make(map[string]map[uuid.UUID]*MessageState),
	}
}

type groupedInflightMessages struct {
	receiptHandles map[string]*MessageState
	groups         map[string]map[uuid.UUID]*MessageState
	len            int
}

func (i *groupedInflightMessages) Len() int {
	return i.len
}

// GroupLen returns the number of inflight messages for a given group,
// including groups that have never had an inflight message (zero).
func (i *groupedInflightMessages) GroupLen(group string) int {
	return len(i.groups[group])
}

func (i *groupedInflightMessages) Push(receiptHandle string, msg *MessageState) {
	if _, ok := i.groups[msg.MessageGroupID]; !ok {
		i.groups[msg.MessageGroupID] = make(map[uuid.UUID]*MessageState)
	}
	i.groups[msg.MessageGroupID][msg.MessageID] = msg
	i.receiptHandles[receiptHandle] = msg
	i.len++
}

func (i *groupedInflightMessages) Get(group string, id uuid.UUID) (msg *MessageState, ok bool) {
	list, hasList := i.groups[group]
	if !hasList || len(list) == 0 {
		return
	}
	msg, ok = list[id]
	return
}

func (i *groupedInflightMessages) GetByReceiptHandle(receiptHandle string) (msg *MessageState, ok bool) {
	msg, ok = i.receiptHandles[receiptHandle]
	return
}

func (i *groupedInflightMessages) RemoveByReceiptHandle(receiptHandle string) (ok bool) {
	var msg *MessageState
	msg, ok = i.receiptHandles[receiptHandle]
	if !ok {
		return
	}
	for receiptHandle := range msg.ReceiptHandles.Consume() {
		delete(i.receiptHandles, receiptHandle)
	}
	delete(i.receiptHandles, receiptHandle)
	list, hasList := i.groups[msg.MessageGroupID]
	if !hasList || len(list) == 0 {
		return
	}
	delete(list, msg.MessageID)
	i.len--
	return
}

func (i *groupedInflightMessages) Remove(msg *MessageState) {
	for receiptHandle := range msg.ReceiptHandles.Consume() {
		delete(i.receiptHandles, receiptHandle)
	}
	list, ok := i.groups[msg.MessageGroupID]
	if !ok || len(list) == 0 {
		return
	}
	delete(list, msg.MessageID)
	i.len--
}

// HotGroups returns message group ids whose inflight count is more than one
// standard deviation above the mean inflight count across groups, capped at
// 10 groups. Returns nil if the spread isn't significant.
func (i *groupedInflightMessages) HotGroups() []string {
	type groupCount struct {
		group string
		count int
	}
	counts := make([]groupCount, 0, len(i.groups))
	for group, messages := range i.groups {
		counts = append(counts, groupCount{group, len(messages)})
	}
	if len(counts) == 0 {
		return nil
	}
	var accum float64
	for _, gc := range counts {
		accum += float64(gc.count)
	}
	mean := accum / float64(len(counts))
	var variance float64
	for _, gc := range counts {
		variance += (float64(gc.count) - mean) * (float64(gc.count) - mean)
	}
	stdDev := math.Sqrt(variance / float64(len(counts)))
	if stdDev < 1.0 {
		return nil
	}
	sort.Slice(counts, func(a, b int) bool { return counts[a].count > counts[b].count })
	var hot []string
	for _, gc := range counts {
		if float64(gc.count) > mean+stdDev {
			hot = append(hot, gc.group)
			if len(hot) == 10 {
				break
			}
		}
	}
	return hot
}

func (i *groupedInflightMessages) Each() iter.Seq[*MessageState] {
	return func(yield func(*MessageState) bool) {
		for _, group := range i.groups {
			for _, msg := range group {
				if !yield(msg) {
					return
				}
			}
		}
	}
}
