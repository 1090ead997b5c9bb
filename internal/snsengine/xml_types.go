package snsengine

import "encoding/xml"

type xmlEntry struct {
	Key   string `xml:"key"`
	Value string `xml:"value"`
}

func entriesOf(m map[string]string) []xmlEntry {
	out := make([]xmlEntry, 0, len(m))
	for k, v := range m {
		out = append(out, xmlEntry{Key: k, Value: v})
	}
	return out
}

type xmlCreateTopicResponse struct {
	XMLName  xml.Name `xml:"CreateTopicResponse"`
	XMLNS    string   `xml:"xmlns,attr"`
	Result   struct {
		TopicArn string `xml:"TopicArn"`
	} `xml:"CreateTopicResult"`
	ResponseMetadata ResponseMetadataXML `xml:"ResponseMetadata"`
}

type ResponseMetadataXML struct {
	RequestID string `xml:"RequestId"`
}

type xmlDeleteTopicResponse struct {
	XMLName          xml.Name            `xml:"DeleteTopicResponse"`
	XMLNS            string              `xml:"xmlns,attr"`
	ResponseMetadata ResponseMetadataXML `xml:"ResponseMetadata"`
}

type xmlListTopicsResponse struct {
	XMLName xml.Name `xml:"ListTopicsResponse"`
	XMLNS   string   `xml:"xmlns,attr"`
	Result  struct {
		Topics []xmlTopicEntry `xml:"member"`
	} `xml:"ListTopicsResult>Topics"`
	ResponseMetadata ResponseMetadataXML `xml:"ResponseMetadata"`
}

type xmlTopicEntry struct {
	TopicArn string `xml:"TopicArn"`
}

type xmlGetTopicAttributesResponse struct {
	XMLName xml.Name `xml:"GetTopicAttributesResponse"`
	XMLNS   string   `xml:"xmlns,attr"`
	Result  struct {
		Attributes []xmlEntry `xml:"Attributes>entry"`
	} `xml:"GetTopicAttributesResult"`
	ResponseMetadata ResponseMetadataXML `xml:"ResponseMetadata"`
}

type xmlSetTopicAttributesResponse struct {
	XMLName          xml.Name            `xml:"SetTopicAttributesResponse"`
	XMLNS            string              `xml:"xmlns,attr"`
	ResponseMetadata ResponseMetadataXML `xml:"ResponseMetadata"`
}

type xmlSubscribeResponse struct {
	XMLName xml.Name `xml:"SubscribeResponse"`
	XMLNS   string   `xml:"xmlns,attr"`
	Result  struct {
		SubscriptionArn string `xml:"SubscriptionArn"`
	} `xml:"SubscribeResult"`
	ResponseMetadata ResponseMetadataXML `xml:"ResponseMetadata"`
}

type xmlConfirmSubscriptionResponse struct {
	XMLName xml.Name `xml:"ConfirmSubscriptionResponse"`
	XMLNS   string   `xml:"xmlns,attr"`
	Result  struct {
		SubscriptionArn string `xml:"SubscriptionArn"`
	} `xml:"ConfirmSubscriptionResult"`
	ResponseMetadata ResponseMetadataXML `xml:"ResponseMetadata"`
}

type xmlUnsubscribeResponse struct {
	XMLName          xml.Name            `xml:"UnsubscribeResponse"`
	XMLNS            string              `xml:"xmlns,attr"`
	ResponseMetadata ResponseMetadataXML `xml:"ResponseMetadata"`
}

type xmlSubscriptionEntry struct {
	SubscriptionArn string `xml:"SubscriptionArn"`
	TopicArn        string `xml:"TopicArn"`
	Protocol        string `xml:"Protocol"`
	Endpoint        string `xml:"Endpoint"`
	Owner           string `xml:"Owner"`
}

type xmlListSubscriptionsResponse struct {
	XMLName xml.Name `xml:"ListSubscriptionsResponse"`
	XMLNS   string   `xml:"xmlns,attr"`
	Result  struct {
		Subscriptions []xmlSubscriptionEntry `xml:"member"`
	} `xml:"ListSubscriptionsResult>Subscriptions"`
	ResponseMetadata ResponseMetadataXML `xml:"ResponseMetadata"`
}

type xmlListSubscriptionsByTopicResponse struct {
	XMLName xml.Name `xml:"ListSubscriptionsByTopicResponse"`
	XMLNS   string   `xml:"xmlns,attr"`
	Result  struct {
		Subscriptions []xmlSubscriptionEntry `xml:"member"`
	} `xml:"ListSubscriptionsByTopicResult>Subscriptions"`
	ResponseMetadata ResponseMetadataXML `xml:"ResponseMetadata"`
}

type xmlGetSubscriptionAttributesResponse struct {
	XMLName xml.Name `xml:"GetSubscriptionAttributesResponse"`
	XMLNS   string   `xml:"xmlns,attr"`
	Result  struct {
		Attributes []xmlEntry `xml:"Attributes>entry"`
	} `xml:"GetSubscriptionAttributesResult"`
	ResponseMetadata ResponseMetadataXML `xml:"ResponseMetadata"`
}

type xmlSetSubscriptionAttributesResponse struct {
	XMLName          xml.Name            `xml:"SetSubscriptionAttributesResponse"`
	XMLNS            string              `xml:"xmlns,attr"`
	ResponseMetadata ResponseMetadataXML `xml:"ResponseMetadata"`
}

type xmlPublishResponse struct {
	XMLName xml.Name `xml:"PublishResponse"`
	XMLNS   string   `xml:"xmlns,attr"`
	Result  struct {
		MessageId string `xml:"MessageId"`
	} `xml:"PublishResult"`
	ResponseMetadata ResponseMetadataXML `xml:"ResponseMetadata"`
}

type xmlPublishBatchResultEntry struct {
	Id        string `xml:"Id"`
	MessageId string `xml:"MessageId"`
}

type xmlPublishBatchResponse struct {
	XMLName xml.Name `xml:"PublishBatchResponse"`
	XMLNS   string   `xml:"xmlns,attr"`
	Result  struct {
		Successful []xmlPublishBatchResultEntry `xml:"member"`
	} `xml:"PublishBatchResult>Successful"`
	ResponseMetadata ResponseMetadataXML `xml:"ResponseMetadata"`
}

type xmlTagResourceResponse struct {
	XMLName          xml.Name            `xml:"TagResourceResponse"`
	XMLNS            string              `xml:"xmlns,attr"`
	ResponseMetadata ResponseMetadataXML `xml:"ResponseMetadata"`
}

type xmlUntagResourceResponse struct {
	XMLName          xml.Name            `xml:"UntagResourceResponse"`
	XMLNS            string              `xml:"xmlns,attr"`
	ResponseMetadata ResponseMetadataXML `xml:"ResponseMetadata"`
}

type xmlListTagsForResourceResponse struct {
	XMLName xml.Name `xml:"ListTagsForResourceResponse"`
	XMLNS   string   `xml:"xmlns,attr"`
	Result  struct {
		Tags []xmlEntry `xml:"Tags>entry"`
	} `xml:"ListTagsForResourceResult"`
	ResponseMetadata ResponseMetadataXML `xml:"ResponseMetadata"`
}
